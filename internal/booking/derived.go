package booking

import "time"

// Derived holds the last and next approved bookings of an item relative to now.
type Derived struct {
	Last *Booking
	Next *Booking
}

// pickLastNext selects from approved bookings of a single item.
// Last is the latest start at or before now, ties going to the later end.
// Next is the earliest start after now, ties going to the earlier end.
// Remaining ties fall back to id so the result does not depend on input order.
func pickLastNext(bookings []*Booking, now time.Time) Derived {
	var d Derived
	for _, b := range bookings {
		if b.Status != StatusApproved {
			continue
		}
		if b.Start.After(now) {
			if d.Next == nil || earlier(b, d.Next) {
				d.Next = b
			}
			continue
		}
		if d.Last == nil || earlier(d.Last, b) {
			d.Last = b
		}
	}
	return d
}

// earlier orders bookings by start, then end, then id.
func earlier(a, b *Booking) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	return a.ID < b.ID
}

func groupByItem(bookings []*Booking) map[string][]*Booking {
	grouped := make(map[string][]*Booking)
	for _, b := range bookings {
		grouped[b.ItemID] = append(grouped[b.ItemID], b)
	}
	return grouped
}
