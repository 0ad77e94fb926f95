package discord

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

var ErrNoSocket = errors.New("could not find a Discord IPC socket")

var socketBaseEnvs = []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"}

// Discord (and its clients) are installed all sorts of ways, each of which
// puts the socket somewhere slightly different
var socketSubPaths = []string{
	"",
	"app/com.discordapp.Discord/",
	"snap.discord/",
	".flatpak/dev.vencord.Vesktop/xdg-run/",
}

const maxSocketIndex = 10

// SocketPaths lists every location a Discord IPC socket may live, in the
// order they are tried.
func SocketPaths() []string {
	var bases []string
	for _, env := range socketBaseEnvs {
		if dir := os.Getenv(env); dir != "" {
			bases = append(bases, dir)
		}
	}
	bases = append(bases, "/tmp")

	var paths []string
	for _, base := range bases {
		for _, sub := range socketSubPaths {
			for i := 0; i < maxSocketIndex; i++ {
				paths = append(paths, filepath.Join(base, sub, fmt.Sprintf("discord-ipc-%d", i)))
			}
		}
	}
	return paths
}

func dialSocket(timeout time.Duration) (net.Conn, error) {
	for _, path := range SocketPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		conn, err := net.DialTimeout("unix", path, timeout)
		if err != nil {
			continue
		}
		return conn, nil
	}
	return nil, ErrNoSocket
}
