package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/battleship-go2/internal/api"
	"github.com/mcoot/battleship-go2/internal/config"
	"github.com/mcoot/battleship-go2/internal/factory"
	"github.com/mcoot/battleship-go2/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "battleship-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/battleship")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)
	return exec.Command(r.binaryPath, fullArgs...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	output, err := r.command(args...).CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := testutil.NopLogger()

	// Create application
	app, err := factory.New(config.Default(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go app.Coordinator.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Broadcaster:    app.Broadcaster,
		GameController: app.GameController,
		Hub:            app.Hub,
		Handler:        app.Coordinator,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
			cancel()
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status string `json:"status"`
}

type lobbyResponse struct {
	Users     []string `json:"users"`
	OpenRooms []struct {
		Code     string `json:"code"`
		HostName string `json:"hostName"`
	} `json:"openRooms"`
	ActiveBattles []struct {
		Player1Name string `json:"player1Name"`
		Player2Name string `json:"player2Name"`
	} `json:"activeBattles"`
}

type roomResponse struct {
	Code   string `json:"code"`
	Exists bool   `json:"exists"`
}

type eventLine struct {
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// events parses the JSON lines printed by play and events
func events(output string) []eventLine {
	var lines []eventLine
	for _, raw := range strings.Split(output, "\n") {
		var line eventLine
		if json.Unmarshal([]byte(raw), &line) == nil {
			lines = append(lines, line)
		}
	}
	return lines
}

func hasEvent(lines []eventLine, name string) bool {
	for _, line := range lines {
		if line.Event == name {
			return true
		}
	}
	return false
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_LobbyAndRoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("lobby")
	require.NoError(t, err, "output: %s", output)

	var lobby lobbyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lobby))
	assert.Empty(t, lobby.Users)
	assert.Empty(t, lobby.OpenRooms)
	assert.Empty(t, lobby.ActiveBattles)

	output, err = cli.run("room", "nope1")
	require.NoError(t, err, "output: %s", output)

	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, "nope1", room.Code)
	assert.False(t, room.Exists)
}

func TestCLI_QuickMatchBotsPlayToCompletion(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var wg sync.WaitGroup
	outputs := make([]string, 2)
	errs := make([]error, 2)
	for i, name := range []string{"Alice", "Bob"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outputs[i], errs[i] = cli.run("play", "--name", name)
		}()
	}
	wg.Wait()

	for i := range outputs {
		require.NoError(t, errs[i], "output: %s", outputs[i])
		lines := events(outputs[i])
		assert.True(t, hasEvent(lines, "match_found"), "output: %s", outputs[i])
		assert.True(t, hasEvent(lines, "game_over"), "output: %s", outputs[i])
	}

	// Finished sessions are removed from the lobby
	output, err := cli.run("lobby")
	require.NoError(t, err)
	var lobby lobbyResponse
	require.NoError(t, json.Unmarshal([]byte(output), &lobby))
	assert.Empty(t, lobby.ActiveBattles)
}

func TestCLI_PrivateRoomFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Host opens a room and waits
	hostCmd := cli.command("play", "--name", "Host", "--host")
	stdout, err := hostCmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, hostCmd.Start())

	var code string
	var hostLines []eventLine
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		var line eventLine
		if json.Unmarshal(scanner.Bytes(), &line) != nil {
			continue
		}
		hostLines = append(hostLines, line)
		if line.Event == "lobby_created" {
			var payload struct {
				RoomCode string `json:"roomCode"`
			}
			require.NoError(t, json.Unmarshal(line.Data, &payload))
			code = payload.RoomCode
			break
		}
	}
	require.NotEmpty(t, code)

	// Keep draining so the host never blocks on a full pipe
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for scanner.Scan() {
			var line eventLine
			if json.Unmarshal(scanner.Bytes(), &line) == nil {
				hostLines = append(hostLines, line)
			}
		}
	}()

	output, err := cli.run("room", code)
	require.NoError(t, err, "output: %s", output)
	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.True(t, room.Exists)

	// Guest joins and both bots play out the match
	guestOutput, err := cli.run("play", "--name", "Guest", "--room", code)
	require.NoError(t, err, "output: %s", guestOutput)
	assert.True(t, hasEvent(events(guestOutput), "game_over"))

	<-drained
	require.NoError(t, hostCmd.Wait())
	assert.True(t, hasEvent(hostLines, "game_over"))
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Joining a missing room exits with the lobby error
	output, err := cli.run("play", "--name", "Lost", "--room", "nope1")
	require.Error(t, err)
	assert.Contains(t, output, "Room not found!")

	// Required flags
	_, err = cli.run("events")
	require.Error(t, err)

	_, err = cli.run("play", "--name", "X", "--host", "--room", "abcde")
	require.Error(t, err)
}
