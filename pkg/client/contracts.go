package client

import (
	"github.com/secosha/marketplace/internal/browse"
	"github.com/secosha/marketplace/internal/gate"
	"github.com/secosha/marketplace/internal/sell"
)

var (
	_ gate.Identity  = (*Client)(nil)
	_ gate.Profiles  = (*Client)(nil)
	_ browse.Fetcher = (*Client)(nil)
	_ sell.Uploader  = (*Client)(nil)
	_ sell.ItemStore = (*Client)(nil)
)
