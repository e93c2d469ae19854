package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/testutil"
)

type DirectorySuite struct {
	suite.Suite
	directory *Directory
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.directory = New(testutil.NopLogger())
}

func (s *DirectorySuite) TestRegisterNormalizesName() {
	name, err := s.directory.Register("id-1", "  Alice ")
	s.Require().NoError(err)
	s.Equal("alice", name)

	got, ok := s.directory.NameOf("id-1")
	s.True(ok)
	s.Equal("alice", got)
}

func (s *DirectorySuite) TestRegisterRejectsBlankName() {
	_, err := s.directory.Register("id-1", "   ")
	s.ErrorIs(err, model.ErrInvalidName)
	s.Zero(s.directory.Count())
}

func (s *DirectorySuite) TestRegisterIsIdempotent() {
	_, _ = s.directory.Register("id-1", "alice")
	_, _ = s.directory.Register("id-1", "alice")

	s.Equal([]string{"alice"}, s.directory.Names())
}

func (s *DirectorySuite) TestRegisterOverwritesInPlace() {
	_, _ = s.directory.Register("id-1", "alice")
	_, _ = s.directory.Register("id-2", "bob")
	_, _ = s.directory.Register("id-1", "carol")

	s.Equal([]string{"carol", "bob"}, s.directory.Names())
	_, ok := s.directory.FindByName("alice")
	s.False(ok)
}

func (s *DirectorySuite) TestFindByNameReturnsFirstInScanOrder() {
	_, _ = s.directory.Register("id-1", "alice")
	_, _ = s.directory.Register("id-2", "ALICE")

	id, ok := s.directory.FindByName("Alice")
	s.True(ok)
	s.Equal(model.Identity("id-1"), id)

	s.directory.Unregister("id-1")
	id, ok = s.directory.FindByName("alice")
	s.True(ok)
	s.Equal(model.Identity("id-2"), id)
}

func (s *DirectorySuite) TestUnregister() {
	_, _ = s.directory.Register("id-1", "alice")

	name, ok := s.directory.Unregister("id-1")
	s.True(ok)
	s.Equal("alice", name)

	_, ok = s.directory.Unregister("id-1")
	s.False(ok)
	s.Empty(s.directory.Names())
}

func (s *DirectorySuite) TestConcurrentRegistration() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := model.Identity(fmt.Sprintf("id-%d", i))
			_, _ = s.directory.Register(id, fmt.Sprintf("user%d", i))
			_, _ = s.directory.FindByName("user0")
		}(i)
	}
	wg.Wait()

	s.Equal(50, s.directory.Count())
}
