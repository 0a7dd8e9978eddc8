package srs

import (
	"iter"
	"slices"
	"strings"
	"time"

	"hanzi/internal/domain"
)

// Due returns the cards due at now, oldest due first, ties broken by identity.
//
// The sequence works on a copy of cards taken when Due is called, so it can be
// ranged over any number of times and always yields the same order.
func Due(cards []domain.Card, now time.Time) iter.Seq[domain.Card] {
	snapshot := slices.Clone(cards)
	return func(yield func(domain.Card) bool) {
		due := make([]domain.Card, 0, len(snapshot))
		for _, c := range snapshot {
			if c.IsDue(now) {
				due = append(due, c)
			}
		}
		slices.SortFunc(due, CompareDue)
		for _, c := range due {
			if !yield(c) {
				return
			}
		}
	}
}

// Limit stops seq after n cards. n <= 0 means no limit.
func Limit(seq iter.Seq[domain.Card], n int) iter.Seq[domain.Card] {
	if n <= 0 {
		return seq
	}
	return func(yield func(domain.Card) bool) {
		taken := 0
		for c := range seq {
			if !yield(c) {
				return
			}
			taken++
			if taken == n {
				return
			}
		}
	}
}

// CompareDue orders cards by next review time, then identity.
func CompareDue(a, b domain.Card) int {
	if c := a.NextReview.Compare(b.NextReview); c != 0 {
		return c
	}
	return strings.Compare(a.Identity, b.Identity)
}
