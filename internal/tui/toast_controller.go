package tui

import (
	"slices"
	"time"

	"github.com/colonyops/tick/internal/core/notify"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 3
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 44
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
}

// ToastController owns the visible toast stack, oldest first. At most
// defaultMaxToasts are kept and each counts down from the configured TTL.
type ToastController struct {
	ttl     time.Duration
	toasts  []toast
	ticking bool
}

// NewToastController falls back to defaultToastTTL for a non-positive ttl.
func NewToastController(ttl time.Duration) *ToastController {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &ToastController{ttl: ttl}
}

// Push shows n. An action toast supersedes earlier toasts offering the same
// action, so only the latest delete can be undone from the stack.
func (c *ToastController) Push(n notify.Notification) {
	if n.Action != notify.ActionNone {
		c.DismissAction(n.Action)
	}
	c.toasts = append(c.toasts, toast{notification: n, remaining: c.ttl})
	if over := len(c.toasts) - defaultMaxToasts; over > 0 {
		c.toasts = slices.Delete(c.toasts, 0, over)
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	for i := range c.toasts {
		c.toasts[i].remaining -= d
	}
	c.toasts = slices.DeleteFunc(c.toasts, func(t toast) bool { return t.remaining <= 0 })
}

// Dismiss drops the newest toast.
func (c *ToastController) Dismiss() {
	if n := len(c.toasts); n > 0 {
		c.toasts = c.toasts[:n-1]
	}
}

func (c *ToastController) Offers(action notify.Action) bool {
	return slices.ContainsFunc(c.toasts, func(t toast) bool { return t.notification.Action == action })
}

func (c *ToastController) DismissAction(action notify.Action) {
	c.toasts = slices.DeleteFunc(c.toasts, func(t toast) bool { return t.notification.Action == action })
}

func (c *ToastController) HasToasts() bool { return len(c.toasts) > 0 }

func (c *ToastController) Toasts() []toast { return c.toasts }

// Ticking reports whether a toastTickMsg is already scheduled.
func (c *ToastController) Ticking() bool { return c.ticking }

func (c *ToastController) SetTicking(v bool) { c.ticking = v }
