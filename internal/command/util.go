package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/taskhub/taskhub/internal/api/handler"
	"github.com/taskhub/taskhub/pkg/client"
	"github.com/taskhub/taskhub/pkg/logger"
)

func prompt(prompt string, mask bool) ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if _, err := os.Stderr.WriteString(prompt); err != nil {
			return nil, err
		}
	}
	line, err := readLine(os.Stdin, mask)
	if mask && term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = os.Stderr.WriteString("\n")
	}
	return line, err
}

// readLine reads up to the end of line, without echo when mask is set and
// stdin is a terminal. Piped input is read byte by byte so nothing past the
// newline is consumed.
func readLine(stdin *os.File, mask bool) ([]byte, error) {
	if mask && term.IsTerminal(int(stdin.Fd())) {
		return term.ReadPassword(int(stdin.Fd()))
	}
	var buf [1]byte
	var ret []byte

	for {
		n, err := stdin.Read(buf[:])
		if n > 0 {
			switch buf[0] {
			case '\b':
				if len(ret) > 0 {
					ret = ret[:len(ret)-1]
				}
			case '\n':
				if runtime.GOOS != "windows" {
					return ret, nil
				}
			case '\r':
				if runtime.GOOS == "windows" {
					return ret, nil
				}
			default:
				ret = append(ret, buf[0])
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(ret) > 0 {
				return ret, nil
			}
			return ret, err
		}
	}
}

// newPassword asks for a password twice and checks it against the policy.
func newPassword() (string, error) {
	pw, err := prompt("password: ", true)
	if err != nil {
		return "", err
	}
	if !handler.PasswordOK(string(pw)) {
		return "", fmt.Errorf("password must be %s", handler.PasswordPolicy)
	}
	confirm, err := prompt("confirm password: ", true)
	if err != nil {
		return "", err
	}
	if string(pw) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(pw), nil
}

// opsLogger is the console logger used by the operator commands.
func opsLogger(level string) zerolog.Logger {
	return logger.Init(logger.Options{Level: level, Pretty: true, Service: "taskhub"})
}

// restoredClient returns a client with the stored session loaded.
func restoredClient(opts *clientOptions) (*client.Client, error) {
	c := client.New(opts.server, client.NewFileStore(opts.sessionPath))
	if err := c.Restore(); err != nil {
		return nil, fmt.Errorf("load session from %s: %w", opts.sessionPath, err)
	}
	return c, nil
}

// authedClient is restoredClient for commands that need a session.
func authedClient(opts *clientOptions) (*client.Client, error) {
	c, err := restoredClient(opts)
	if err != nil {
		return nil, err
	}
	if c.State() != client.StateAuthenticated {
		return nil, errors.New("not logged in; run `taskhub login` first")
	}
	return c, nil
}

// explain turns SDK session errors into advice.
func explain(err error) error {
	if errors.Is(err, client.ErrSessionExpired) {
		return errors.New("session expired; run `taskhub login` again")
	}
	return err
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}
