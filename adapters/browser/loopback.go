package browser

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gin-gonic/gin"

	"github.com/walletkit/walletkit/ports"
)

// LoopbackBrowser opens the system browser at the authorization URL and runs
// a loopback HTTP server that stands in for the opener window: the backend's
// completion page posts the auth result to it, and sends a close beacon when
// the user dismisses the popup without completing.
type LoopbackBrowser struct {
	open   func(url string) error
	logger watermill.LoggerAdapter
}

var _ ports.Browser = (*LoopbackBrowser)(nil)

// NewLoopbackBrowser creates a browser using the platform's default opener.
func NewLoopbackBrowser(logger watermill.LoggerAdapter) *LoopbackBrowser {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &LoopbackBrowser{open: openSystemBrowser, logger: logger}
}

// NewLoopbackBrowserWithOpener creates a browser with a custom URL opener.
func NewLoopbackBrowserWithOpener(open func(url string) error, logger watermill.LoggerAdapter) *LoopbackBrowser {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &LoopbackBrowser{open: open, logger: logger}
}

// Open starts the loopback server, then launches the browser at authURL with
// a completion_uri query parameter pointing back at the server. An error here
// means the popup could not be opened at all.
func (b *LoopbackBrowser) Open(ctx context.Context, authURL string) (ports.PopupWindow, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind loopback listener: %w", err)
	}

	win := &loopbackWindow{
		messages: make(chan ports.AuthMessage, 4),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.POST("/complete", win.handleComplete)
	engine.POST("/closed", win.handleClosed)

	win.server = &http.Server{Handler: engine}
	go func() {
		if err := win.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			b.logger.Error("loopback server stopped", err, nil)
		}
	}()

	completionURI := fmt.Sprintf("http://%s/complete", listener.Addr().String())
	target := authURL
	if parsed, err := url.Parse(authURL); err == nil {
		q := parsed.Query()
		q.Set("completion_uri", completionURI)
		parsed.RawQuery = q.Encode()
		target = parsed.String()
	}

	if err := b.open(target); err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	b.logger.Debug("opened authentication popup", watermill.LogFields{"completion_uri": completionURI})
	return win, nil
}

type loopbackWindow struct {
	messages  chan ports.AuthMessage
	closed    atomic.Bool
	server    *http.Server
	closeOnce sync.Once
}

func (w *loopbackWindow) handleComplete(c *gin.Context) {
	var msg ports.AuthMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	msg.Origin = c.GetHeader("Origin")

	select {
	case w.messages <- msg:
	default:
		// A completion already landed; later messages are no-ops.
	}
	c.Status(http.StatusOK)
}

func (w *loopbackWindow) handleClosed(c *gin.Context) {
	w.closed.Store(true)
	c.Status(http.StatusNoContent)
}

// Messages delivers completion messages posted by the popup page.
func (w *loopbackWindow) Messages() <-chan ports.AuthMessage {
	return w.messages
}

// Closed reports whether the popup sent its close beacon.
func (w *loopbackWindow) Closed() bool {
	return w.closed.Load()
}

// Close shuts the loopback server down.
func (w *loopbackWindow) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		err = w.server.Close()
	})
	return err
}

func openSystemBrowser(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}
