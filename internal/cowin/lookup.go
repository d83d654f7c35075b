package cowin

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Strategy names a way of scoping an availability query.
type Strategy string

const (
	ByDistrict Strategy = "district"
	ByPin      Strategy = "pin"
	ByCenter   Strategy = "center"
)

// Lookup fetches the centers for one target identifier and start date.
type Lookup interface {
	Strategy() Strategy
	Sessions(ctx context.Context, id int, date time.Time) ([]Center, error)
}

// NewLookup returns the lookup for strategy backed by client.
func NewLookup(client *Client, strategy Strategy) (Lookup, error) {
	switch strategy {
	case ByDistrict:
		return districtLookup{client: client}, nil
	case ByPin:
		return pinLookup{client: client}, nil
	case ByCenter:
		return unsupportedLookup{strategy: ByCenter}, nil
	default:
		return nil, fmt.Errorf("cowin: unknown lookup strategy %q", strategy)
	}
}

type districtLookup struct {
	client *Client
}

func (districtLookup) Strategy() Strategy { return ByDistrict }

func (l districtLookup) Sessions(ctx context.Context, id int, date time.Time) ([]Center, error) {
	return l.client.SessionsByDistrict(ctx, id, date)
}

type pinLookup struct {
	client *Client
}

func (pinLookup) Strategy() Strategy { return ByPin }

func (l pinLookup) Sessions(ctx context.Context, id int, date time.Time) ([]Center, error) {
	return l.client.SessionsByPin(ctx, strconv.Itoa(id), date)
}

type unsupportedLookup struct {
	strategy Strategy
}

func (u unsupportedLookup) Strategy() Strategy { return u.strategy }

func (u unsupportedLookup) Sessions(context.Context, int, time.Time) ([]Center, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedLookup, u.strategy)
}
