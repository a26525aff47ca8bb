package calendar

import (
	"context"
	"time"

	"nhc/pkg/requestcontext"
)

// Today is the request's calendar day in loc.
func Today(ctx context.Context, loc *time.Location) Date {
	return On(requestcontext.Now(ctx), loc)
}
