package entity

import "github.com/shopspring/decimal"

// OrganizerDashboard summarizes every event created by one user.
type OrganizerDashboard struct {
	TotalEvents    int             `json:"total_events"`
	UpcomingEvents int             `json:"upcoming_events"`
	TotalBookings  int             `json:"total_bookings"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	RecentEvents   []*Event        `json:"recent_events"`
}

// EventDashboard is the creator-only breakdown of one event.
type EventDashboard struct {
	Event             *Event          `json:"event"`
	TotalBookings     int             `json:"total_bookings"`
	ConfirmedBookings int             `json:"confirmed_bookings"`
	PendingBookings   int             `json:"pending_bookings"`
	Revenue           decimal.Decimal `json:"revenue"`
	RecentBookings    []*Booking      `json:"recent_bookings"`
}
