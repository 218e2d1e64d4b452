package model

import "testing"

func TestNormalizeTicketStatus(t *testing.T) {
	cases := []struct {
		canonical string
		legacy    string
		want      TicketStatus
	}{
		{"paid", "", TicketPaid},
		{"cancelled", "Đã thanh toán", TicketCancelled}, // canonical wins
		{"", "Chờ thanh toán", TicketPending},
		{"", "DaDat", TicketPending},
		{"", "Đã thanh toán", TicketPaid},
		{"", "DaThanhToan", TicketPaid},
		{"", "Đã hoàn thành", TicketCompleted},
		{"", "DaHoanThanh", TicketCompleted},
		{"", "Đã hủy", TicketCancelled},
		{"", "DaHuy", TicketCancelled},
		// Unknown values keep the seat occupied.
		{"", "mystery", TicketPending},
		{"bogus", "", TicketPending},
		{"", "", TicketPending},
	}
	for _, tc := range cases {
		if got := NormalizeTicketStatus(tc.canonical, tc.legacy); got != tc.want {
			t.Fatalf("NormalizeTicketStatus(%q, %q) = %s, want %s", tc.canonical, tc.legacy, got, tc.want)
		}
	}
}

func TestTicketStatusActive(t *testing.T) {
	for _, s := range []TicketStatus{TicketPending, TicketPaid, TicketCompleted} {
		if !s.Active() {
			t.Fatalf("%s should occupy its seat", s)
		}
	}
	if TicketCancelled.Active() {
		t.Fatalf("cancelled ticket must not occupy a seat")
	}
	if TicketStatus("").Active() {
		t.Fatalf("empty status must not occupy a seat")
	}
}
