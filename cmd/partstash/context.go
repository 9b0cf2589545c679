package main

import (
	"fmt"
	"sync"

	"github.com/partstash/partstash/internal/bom"
	"github.com/partstash/partstash/internal/parts"
	"github.com/partstash/partstash/internal/store"
)

// commandContext lazily opens the SQLite store and builds the service the
// first time a command needs it, so flag parsing and help never touch the
// filesystem.
type commandContext struct {
	storeFlag   *string
	profileFlag *string
	userFlag    *string
	projectFlag *string
	jsonFlag    *bool

	once    sync.Once
	service *parts.Service
	db      *store.SQLite
	err     error
}

func newCommandContext(storeFlag, profileFlag, userFlag, projectFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		storeFlag:   storeFlag,
		profileFlag: profileFlag,
		userFlag:    userFlag,
		projectFlag: projectFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureService() (*parts.Service, error) {
	c.once.Do(func() {
		var profile *bom.ImportProfile
		if *c.profileFlag != "" {
			p, err := bom.LoadProfile(*c.profileFlag)
			if err != nil {
				c.err = err
				return
			}
			profile = p
		}

		db, err := store.OpenSQLite(*c.storeFlag)
		if err != nil {
			c.err = fmt.Errorf("open store %s: %w", *c.storeFlag, err)
			return
		}
		c.db = db
		c.service = parts.NewService(db, "", profile)
	})
	return c.service, c.err
}

func (c *commandContext) close() {
	if c.db != nil {
		c.db.Close()
	}
}

func (c *commandContext) user() string    { return *c.userFlag }
func (c *commandContext) project() string { return *c.projectFlag }
func (c *commandContext) json() bool      { return *c.jsonFlag }
