package db

import (
	"strings"
	"testing"
)

func TestOverlapGuardDDL(t *testing.T) {
	if !strings.Contains(bookingsNoOverlapDDL, "tstzrange(start_time, end_time)") {
		t.Error("overlap guard must range over timestamptz columns with tstzrange")
	}
	if strings.Contains(bookingsNoOverlapDDL, " tsrange(") {
		t.Error("tsrange does not exist for timestamptz columns; the ALTER would fail with 42883")
	}
	if !strings.Contains(bookingsNoOverlapDDL, "barber_id WITH =") {
		t.Error("overlap guard must scope to a single barber")
	}
	if !strings.Contains(bookingsNoOverlapDDL, "'pending', 'confirmed'") {
		t.Error("only active statuses may occupy the ledger")
	}
}
