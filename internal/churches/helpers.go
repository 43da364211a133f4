package churches

import (
	"time"

	"github.com/viddefe/go-viddefe/domain"
)

func cloneChurch(c *domain.Church) *domain.Church {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.FoundationDate = cloneTime(c.FoundationDate)
	cloned.Latitude = cloneFloat(c.Latitude)
	cloned.Longitude = cloneFloat(c.Longitude)
	if c.Pastor != nil {
		p := *c.Pastor
		cloned.Pastor = &p
	}
	if c.State != nil {
		s := *c.State
		cloned.State = &s
	}
	if c.City != nil {
		ci := *c.City
		cloned.City = &ci
	}
	return &cloned
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
