package domain

// ClientID identifies a client record. Values are assigned by the store.
type ClientID int64

// TripID identifies a trip record. Values are assigned by the store.
type TripID int64

// CountryID identifies a country record.
type CountryID int64
