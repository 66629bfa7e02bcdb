// File: internal/services/mtproto/config.go
package mtproto

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gotd/td/tg"
)

// CodePrompt asks the operator for the login code Telegram just sent.
type CodePrompt func(ctx context.Context, sentCode *tg.AuthSentCode) (string, error)

// Config holds MTProto account settings
type Config struct {
	AppID    int
	AppHash  string
	Phone    string
	Password string // 2FA password, empty when the account has none

	// Max dialogs requested per messages.getDialogs call
	DialogPageSize int

	CodePrompt CodePrompt
}

func (c *Config) Validate() error {
	if c.AppID == 0 {
		return errors.New("api id is required")
	}
	if c.AppHash == "" {
		return errors.New("api hash is required")
	}
	if c.Phone == "" {
		return errors.New("phone number is required")
	}
	if c.DialogPageSize <= 0 || c.DialogPageSize > 100 {
		c.DialogPageSize = 100
	}
	if c.CodePrompt == nil {
		c.CodePrompt = TerminalCodePrompt(os.Stdin, os.Stdout)
	}
	return nil
}

// TerminalCodePrompt reads the login code from in, one line.
func TerminalCodePrompt(in io.Reader, out io.Writer) CodePrompt {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(out, "Enter the Telegram login code: ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read login code: %w", err)
		}
		code := strings.TrimSpace(line)
		if code == "" {
			return "", errors.New("empty login code")
		}
		return code, nil
	}
}
