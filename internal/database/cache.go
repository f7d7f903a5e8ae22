package database

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mdouchement/clouddrive/internal/model"
)

type cached struct {
	Client
	files *expirable.LRU[int, *model.File]
}

// NewCached returns a Client serving FindFile from an expirable LRU.
// A size of zero disables the cache.
func NewCached(c Client, size int, ttl time.Duration) Client {
	if size <= 0 {
		return c
	}

	return &cached{
		Client: c,
		files:  expirable.NewLRU[int, *model.File](size, nil, ttl),
	}
}

func (c *cached) CreateFile(f *model.File) error {
	if err := c.Client.CreateFile(f); err != nil {
		return err
	}
	c.files.Add(f.ID, f)
	return nil
}

func (c *cached) FindFile(id int) (*model.File, error) {
	if file, ok := c.files.Get(id); ok {
		return file, nil
	}

	file, err := c.Client.FindFile(id)
	if err != nil {
		return file, err
	}
	c.files.Add(id, file)
	return file, nil
}

func (c *cached) DeleteFile(id int) error {
	c.files.Remove(id)
	return c.Client.DeleteFile(id)
}
