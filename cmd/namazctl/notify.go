package main

import (
	"fmt"
	"time"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// notifier announces an upcoming prayer once it is within lead. Each prayer
// is announced at most once; the next prayer re-arms it.
type notifier struct {
	lead      time.Duration
	announced time.Time
}

func newNotifier(lead time.Duration) *notifier {
	if lead <= 0 {
		return nil
	}
	return &notifier{lead: lead}
}

// check returns the alert line for info, if one is due.
func (n *notifier) check(info prayer.NextPrayerInfo) (string, bool) {
	if n == nil {
		return "", false
	}
	mins := int(info.Remaining / time.Minute)
	if info.Remaining > n.lead || mins <= 0 || n.announced.Equal(info.At) {
		return "", false
	}
	n.announced = info.At
	return fmt.Sprintf("\a%s vakti yaklaşıyor: %s vaktine %d dakika kaldı.", info.Label, info.Label, mins), true
}
