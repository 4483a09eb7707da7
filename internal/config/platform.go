package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Platform is a preset of output dimensions and limits for a publishing
// target.
type Platform struct {
	Name        string
	Width       int
	Height      int
	FPS         int
	MaxDuration time.Duration // zero means no limit
}

var platforms = map[string]Platform{
	"youtube":            {Name: "youtube", Width: 1920, Height: 1080, FPS: 30},
	"youtube_4k":         {Name: "youtube_4k", Width: 3840, Height: 2160, FPS: 30},
	"shorts":             {Name: "shorts", Width: 1080, Height: 1920, FPS: 30, MaxDuration: 60 * time.Second},
	"tiktok":             {Name: "tiktok", Width: 1080, Height: 1920, FPS: 30, MaxDuration: 180 * time.Second},
	"instagram_reels":    {Name: "instagram_reels", Width: 1080, Height: 1920, FPS: 30, MaxDuration: 90 * time.Second},
	"instagram":          {Name: "instagram", Width: 1080, Height: 1080, FPS: 30, MaxDuration: 60 * time.Second},
	"instagram_portrait": {Name: "instagram_portrait", Width: 1080, Height: 1350, FPS: 30, MaxDuration: 60 * time.Second},
}

// LookupPlatform finds a preset by name. Lookup is case-insensitive and
// treats '-' and '_' as equivalent.
func LookupPlatform(name string) (Platform, error) {
	key := strings.ReplaceAll(strings.ToLower(name), "-", "_")
	p, ok := platforms[key]
	if !ok {
		return Platform{}, fmt.Errorf("%w: unknown platform %q", ErrInvalidConfig, name)
	}
	return p, nil
}

// Platforms returns all presets sorted by name.
func Platforms() []Platform {
	out := make([]Platform, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Apply copies the preset's dimensions and duration limit onto the config.
func (p Platform) Apply(c *Config) {
	c.Width = p.Width
	c.Height = p.Height
	c.FPS = p.FPS
	if p.MaxDuration > 0 && (c.MaxDuration == 0 || p.MaxDuration < c.MaxDuration) {
		c.MaxDuration = p.MaxDuration
	}
}
