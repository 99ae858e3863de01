// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/templeops/templeadmin/internal/util"
)

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardPath serves the home screen figures.
const DashboardPath = "/dashboard/home"

// Metrics are today's figures shown on the home screen.
type Metrics struct {
	TicketCounters int64

	BookingsToday int64
	PeopleToday   int64

	ChatbotBookings int64
	ChatbotPeople   int64

	EnteredBookings int64
	EnteredPeople   int64

	DonationCount  int64
	DonationAmount float64

	TxnCount  int64
	TxnAmount float64

	// Series is the last 30 days of people counts, oldest first.
	Series []DayPoint
}

// DayPoint is one day of the booking chart.
type DayPoint struct {
	Date          string
	People300     int64
	People1000    int64
	PeopleScanned int64
}

// Numeric members arrive as numbers or numeric strings depending on the
// database driver, so they are read raw.
type dashboardPayload struct {
	TicketCounterCount json.RawMessage `json:"ticketCounterCount"`
	Bookings           struct {
		AllToday struct {
			BookingsToday json.RawMessage `json:"bookings_today"`
			PeopleToday   json.RawMessage `json:"people_today"`
		} `json:"allToday"`
		ChatbotToday struct {
			Bookings json.RawMessage `json:"chatbot_bookings_today"`
			People   json.RawMessage `json:"chatbot_people_today"`
		} `json:"chatbotToday"`
		SeriesLast30Days []struct {
			BookingDate   string          `json:"bookingDate"`
			People300     json.RawMessage `json:"people_300"`
			People1000    json.RawMessage `json:"people_1000"`
			PeopleScanned json.RawMessage `json:"people_scanned"`
		} `json:"seriesLast30Days"`
	} `json:"bookings"`
	EnteredToday struct {
		Bookings json.RawMessage `json:"bookings_entered_today"`
		People   json.RawMessage `json:"people_entered_today"`
	} `json:"enteredToday"`
	DonationsToday struct {
		Count  json.RawMessage `json:"donation_txn_count"`
		Amount json.RawMessage `json:"donation_amount_today"`
	} `json:"donationsToday"`
	Transactions struct {
		Today struct {
			Count  json.RawMessage `json:"txn_count"`
			Amount json.RawMessage `json:"total_amount"`
		} `json:"today"`
	} `json:"transactions"`
}

// Dashboard fetches the home screen metrics. Missing members read as zero.
func (c *Client) Dashboard(ctx context.Context) (*Metrics, error) {
	env, err := c.doJSON(ctx, http.MethodGet, DashboardPath, nil)
	if err != nil {
		return nil, err
	}
	var p dashboardPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, &APIError{Type: ErrTypeInvalidResponse, Message: "failed to decode dashboard", Cause: err}
		}
	}

	m := &Metrics{
		TicketCounters:  util.FlexibleInt(p.TicketCounterCount),
		BookingsToday:   util.FlexibleInt(p.Bookings.AllToday.BookingsToday),
		PeopleToday:     util.FlexibleInt(p.Bookings.AllToday.PeopleToday),
		ChatbotBookings: util.FlexibleInt(p.Bookings.ChatbotToday.Bookings),
		ChatbotPeople:   util.FlexibleInt(p.Bookings.ChatbotToday.People),
		EnteredBookings: util.FlexibleInt(p.EnteredToday.Bookings),
		EnteredPeople:   util.FlexibleInt(p.EnteredToday.People),
		DonationCount:   util.FlexibleInt(p.DonationsToday.Count),
		DonationAmount:  util.FlexibleFloat(p.DonationsToday.Amount),
		TxnCount:        util.FlexibleInt(p.Transactions.Today.Count),
		TxnAmount:       util.FlexibleFloat(p.Transactions.Today.Amount),
	}
	for _, row := range p.Bookings.SeriesLast30Days {
		m.Series = append(m.Series, DayPoint{
			Date:          row.BookingDate,
			People300:     util.FlexibleInt(row.People300),
			People1000:    util.FlexibleInt(row.People1000),
			PeopleScanned: util.FlexibleInt(row.PeopleScanned),
		})
	}
	return m, nil
}

// =============================================================================
// SERVICE TOGGLES
// =============================================================================

// ServiceTogglesPath is the public booking/donation switch.
const ServiceTogglesPath = "/servicetoggles"

// Service names accepted by SetService.
const (
	ServiceBooking  = "booking"
	ServiceDonation = "donation"
)

// ServiceToggles reports whether public booking and donation are open.
type ServiceToggles struct {
	Booking  bool
	Donation bool
}

// Services fetches the current service switches.
func (c *Client) Services(ctx context.Context) (ServiceToggles, error) {
	env, err := c.doJSON(ctx, http.MethodGet, ServiceTogglesPath, nil)
	if err != nil {
		return ServiceToggles{}, err
	}
	var p struct {
		EnableBooking  json.RawMessage `json:"enable_booking"`
		EnableDonation json.RawMessage `json:"enable_donation"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return ServiceToggles{}, &APIError{Type: ErrTypeInvalidResponse, Message: "failed to decode service toggles", Cause: err}
		}
	}
	return ServiceToggles{
		Booking:  util.FlexibleInt(p.EnableBooking) == 1,
		Donation: util.FlexibleInt(p.EnableDonation) == 1,
	}, nil
}

// SetService opens or closes a public service.
func (c *Client) SetService(ctx context.Context, service string, enabled bool) error {
	if service != ServiceBooking && service != ServiceDonation {
		return &APIError{Type: ErrTypeRejected, Message: fmt.Sprintf("unknown service %q", service)}
	}
	status := 0
	if enabled {
		status = 1
	}
	_, err := c.doJSON(ctx, http.MethodPut, ServiceTogglesPath+"/"+service, map[string]int{"status": status})
	return err
}
