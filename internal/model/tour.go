package model

import "time"

// Tour carries the subset of tour content the payment core needs: the live
// prices used to snapshot a booking at creation, and the destination label
// copied onto the booking for receipts.  Full tour content (itinerary,
// images, blog links) is managed elsewhere.
type Tour struct {
    ID          uint64    // tours.id
    Name        string    // tours.name
    Destination string    // tours.destination
    PriceAdult  int64     // tours.price_adult
    PriceChild  int64     // tours.price_child
    CreatedAt   time.Time // tours.created_at
}
