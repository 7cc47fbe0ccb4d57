package routing

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edhor1608/Nexum/internal/metrics"
)

// SocketBaseName is the file name used for the routing daemon's socket
// inside whichever directory ResolveSocketPath picks.
const SocketBaseName = "nexumd.sock"

// ResolveSocketPath returns the default socket path: {runtimeDir}/nexumd.sock
// when runtimeDir is set, else the system temp directory joined with the
// same base name.
func ResolveSocketPath(runtimeDir string) string {
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, SocketBaseName)
	}
	return filepath.Join(os.TempDir(), SocketBaseName)
}

// Daemon serves the routing State over a Unix domain socket using
// newline-delimited JSON framing.
type Daemon struct {
	socketPath string
	logger     zerolog.Logger

	mu    sync.Mutex
	state *State
}

// NewDaemon builds a daemon bound to socketPath with an empty routing table.
func NewDaemon(socketPath string, logger zerolog.Logger) *Daemon {
	return &Daemon{
		socketPath: socketPath,
		logger:     logger.With().Str("component", "routing").Logger(),
		state:      NewState(),
	}
}

// Serve binds the socket, removing any stale socket file first, and runs
// the accept loop until ctx is cancelled. It unlinks the socket on exit.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := removeStaleSocket(d.socketPath); err != nil {
		return err
	}
	if dir := filepath.Dir(d.socketPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("routing: create socket dir %s: %w", dir, err)
		}
	}

	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("routing: listen on %s: %w", d.socketPath, err)
	}
	defer os.Remove(d.socketPath)

	d.logger.Info().Str("socket", d.socketPath).Msg("routing daemon listening")

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-gctx.Done()
		return listener.Close()
	})

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-gctx.Done():
				return group.Wait()
			default:
				return fmt.Errorf("routing: accept: %w", err)
			}
		}
		group.Go(func() error {
			d.handleConnection(conn)
			return nil
		})
	}
}

func removeStaleSocket(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("routing: stat socket %s: %w", path, err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("routing: %s exists and is not a socket: %w", path, os.ErrExist)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("routing: remove stale socket %s: %w", path, err)
	}
	return nil
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var cmd Command
		var outcome Outcome
		if err := json.Unmarshal(line, &cmd); err != nil {
			outcome = Outcome{Kind: KindError, Code: "invalid_command", Message: err.Error()}
		} else {
			d.mu.Lock()
			outcome = d.state.Handle(cmd)
			d.mu.Unlock()
		}
		metrics.RoutingCommandsTotal.WithLabelValues(cmd.Cmd, outcome.Kind).Inc()

		encoded, err := json.Marshal(outcome)
		if err != nil {
			d.logger.Error().Err(err).Msg("encode outcome")
			return
		}
		encoded = append(encoded, '\n')
		if _, err := conn.Write(encoded); err != nil {
			d.logger.Warn().Err(err).Msg("write outcome")
			return
		}
	}
	if err := scanner.Err(); err != nil {
		d.logger.Warn().Err(err).Msg("read command")
	}
}
