package health

import "context"

// DBPinger checks catalog store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Index reports the size of the loaded search index.
type Index interface {
	Len() int
}
