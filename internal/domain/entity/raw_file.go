package entity

// RawFile is a discovered object in the storage namespace, classified by
// the logical source it feeds
type RawFile struct {
	Key    string
	Name   string
	Source string
}
