package service

import "testing"

func TestUserChannel(t *testing.T) {
	if got := UserChannel("alice"); got != "daybook:user:alice" {
		t.Fatalf("unexpected channel %s", got)
	}
}
