// Package conn manages the MongoDB connection queries run on: it dials
// lazily, reuses the session while it is alive, and closes it on demand.
package conn

import (
	"context"
	"sync"
	"time"

	"github.com/globalsign/mgo"
	"github.com/rs/zerolog"

	"github.com/icza/created"
)

var _ created.Resolver = (*Conn)(nil)

// dialFunc dials a MongoDB session.
type dialFunc func(url string, timeout time.Duration) (*mgo.Session, error)

// Conn is a lazily established MongoDB connection. It implements
// created.Resolver. Conn is safe for concurrent use.
type Conn struct {
	cfg  Config
	log  zerolog.Logger
	dial dialFunc

	// mu guards sess
	mu   sync.Mutex
	sess *mgo.Session
}

// New returns a new Conn. Nothing is dialed until the first collection
// is requested.
func New(cfg Config, log zerolog.Logger) *Conn {
	return &Conn{
		cfg:  cfg,
		log:  log,
		dial: mgo.DialWithTimeout,
	}
}

// Session returns the live session, dialing a new one if there is none or
// the current one does not answer a ping.
func (c *Conn) Session(ctx context.Context) (*mgo.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil {
		err := c.sess.Ping()
		if err == nil {
			return c.sess, nil
		}
		c.log.Warn().Err(err).Msg("session lost, redialing")
		c.sess.Close()
		c.sess = nil
	}

	sess, err := c.dial(c.cfg.URL, c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	sess.SetSocketTimeout(c.cfg.Timeout)
	c.log.Debug().Str("db", c.cfg.Database).Msg("dialed")
	c.sess = sess
	return sess, nil
}

// Collection implements created.Resolver.
func (c *Conn) Collection(ctx context.Context, name string) (created.Collection, error) {
	sess, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	return created.MgoCollection(sess.DB(c.cfg.Database).C(name)), nil
}

// Close closes the session, if any. The next request dials again.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil {
		c.sess.Close()
		c.sess = nil
		c.log.Debug().Msg("closed")
	}
}
