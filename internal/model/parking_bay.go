package model

import "time"

// ParkingBay describes a single physical parking space that can be
// booked for a time slot.  Bays are created and edited by admins.
// The Available flag is a manual administrative override – it is
// independent of reservation state and, when false, blocks new
// bookings for the bay.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – human readable name of the bay.
//  Latitude   – WGS84 latitude, between -90 and 90.
//  Longitude  – WGS84 longitude, between -180 and 180.
//  PriceCents – hourly price in cents (> 0).
//  Available  – admin-controlled availability flag.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type ParkingBay struct {
	ID         uint64    // parking_bays.id
	Title      string    // parking_bays.title
	Latitude   float64   // parking_bays.latitude
	Longitude  float64   // parking_bays.longitude
	PriceCents int64     // parking_bays.price_cents
	Available  bool      // parking_bays.available
	CreatedAt  time.Time // parking_bays.created_at
	UpdatedAt  time.Time // parking_bays.updated_at
}
