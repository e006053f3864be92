// Package notify delivers job-completion signals to the user, localized
// to English or Arabic.
package notify

import (
	"os/exec"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// appTitle is the notification title on every surface.
const appTitle = "BioTrack AI"

// Event is a notifiable job outcome.
type Event int

const (
	EventPlanReady Event = iota
	EventPlanFailed
	EventPlanTimedOut
)

// Notifier delivers one event to the user. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Notify(event Event)
}

var eventKeys = map[Event]string{
	EventPlanReady:    "plan.ready",
	EventPlanFailed:   "plan.failed",
	EventPlanTimedOut: "plan.timedout",
}

func init() {
	for _, s := range []struct {
		tag  language.Tag
		key  string
		text string
	}{
		{language.English, "plan.ready", "Your diet plan is ready!"},
		{language.English, "plan.failed", "Diet plan generation failed. Please try again"},
		{language.English, "plan.timedout", "Generation timed out. Please try again"},
		{language.Arabic, "plan.ready", "تم إصدار جدولك الغذائي بنجاح!"},
		{language.Arabic, "plan.failed", "فشل في تصميم النظام الغذائي. يرجى المحاولة مرة أخرى"},
		{language.Arabic, "plan.timedout", "انتهت المهلة الزمنية. يرجى المحاولة مرة أخرى"},
	} {
		if err := message.SetString(s.tag, s.key, s.text); err != nil {
			panic(err)
		}
	}
}

// Text renders the localized message for an event. Unsupported languages
// fall back to English.
func Text(tag language.Tag, event Event) string {
	key, ok := eventKeys[event]
	if !ok {
		return ""
	}
	return message.NewPrinter(tag).Sprintf(key)
}

// Toast logs the event and hands the rendered message to an optional
// callback, the in-process analogue of an on-screen toast.
type Toast struct {
	Lang     language.Tag
	Callback func(title, body string)
}

// NewToast creates a toast notifier for the given language.
func NewToast(tag language.Tag, callback func(title, body string)) *Toast {
	return &Toast{Lang: tag, Callback: callback}
}

func (t *Toast) Notify(event Event) {
	body := Text(t.Lang, event)
	zap.L().Info("notification",
		zap.String("title", appTitle),
		zap.String("body", body))
	if t.Callback != nil {
		t.Callback(appTitle, body)
	}
}

// Desktop fires a best-effort desktop notification through notify-send.
// Missing binary or a failed invocation is silently ignored; the toast
// surface is the one that must always work.
type Desktop struct {
	Lang   language.Tag
	binary string
}

// NewDesktop probes for notify-send. When absent the notifier is a no-op.
func NewDesktop(tag language.Tag) *Desktop {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		zap.L().Debug("notify-send not available, desktop notifications disabled")
		return &Desktop{Lang: tag}
	}
	return &Desktop{Lang: tag, binary: path}
}

// Enabled reports whether desktop delivery is possible.
func (d *Desktop) Enabled() bool { return d.binary != "" }

func (d *Desktop) Notify(event Event) {
	if d.binary == "" {
		return
	}
	if err := exec.Command(d.binary, appTitle, Text(d.Lang, event)).Run(); err != nil {
		zap.L().Debug("desktop notification failed", zap.Error(err))
	}
}

// Multi fans one event out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(event Event) {
	for _, n := range m {
		n.Notify(event)
	}
}
