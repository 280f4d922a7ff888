package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

const defaultWidth = 80

// Notifier renders toasts and bursts as colored terminal lines. Toasts are
// dismissed with a second line once their duration elapses.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	width  int
	color  bool
	timers map[uuid.UUID]*time.Timer
	closed bool
}

var _ ports.Notifier = (*Notifier)(nil)

type Config struct {
	// Width is the number of columns a burst origin is spread across.
	Width int
	// NoColor disables ANSI escape sequences.
	NoColor bool
}

func NewNotifier(out io.Writer, cfg Config) *Notifier {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	return &Notifier{
		out:    out,
		width:  cfg.Width,
		color:  !cfg.NoColor,
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

func (n *Notifier) Toast(toast domain.Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	fmt.Fprintf(n.out, "%s %s\n", n.paint(toast.Color, "■"), toast.Message)

	id := toast.ID
	n.timers[id] = time.AfterFunc(toast.Duration, func() {
		n.dismiss(id, toast.OrganizationKey)
	})
}

func (n *Notifier) Burst(burst domain.Burst) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	col := int(burst.Origin.X * float64(n.width-1))
	if col < 0 {
		col = 0
	}
	particles := burst.ParticleCount / 20
	if particles < 1 {
		particles = 1
	}

	color := domain.Color("")
	if len(burst.Colors) > 0 {
		color = burst.Colors[0]
	}
	fmt.Fprintf(n.out, "%s%s\n", strings.Repeat(" ", col), n.paint(color, strings.Repeat("•", particles)))
}

// Pending returns the number of toasts still on screen.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

// Close stops every pending dismissal; later toasts and bursts are dropped.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	return nil
}

func (n *Notifier) dismiss(id uuid.UUID, organizationKey string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.timers[id]; !ok {
		return
	}
	delete(n.timers, id)
	fmt.Fprintf(n.out, "  (dismissed %s)\n", organizationKey)
}

func (n *Notifier) paint(c domain.Color, s string) string {
	if !n.color || c == "" {
		return s
	}
	r, g, b, err := c.RGB()
	if err != nil {
		return s
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, s)
}
