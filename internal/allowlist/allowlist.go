package allowlist

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/routing"
)

// Checker decides whether a sender may feed the pipeline. Entries are
// either full addresses or bare domains; an empty list accepts everyone.
type Checker struct {
	addresses map[string]bool
	domains   map[string]bool
	logger    *zap.Logger
}

// NewChecker creates a new allowlist checker
func NewChecker(entries []string, logger *zap.Logger) *Checker {
	c := &Checker{
		addresses: make(map[string]bool),
		domains:   make(map[string]bool),
		logger:    logger,
	}
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "@") {
			c.addresses[entry] = true
		} else {
			c.domains[entry] = true
		}
	}

	if (len(c.addresses) > 0 || len(c.domains) > 0) && logger != nil {
		logger.Info("Initialized sender allowlist",
			zap.Int("addresses", len(c.addresses)),
			zap.Int("domains", len(c.domains)))
	}
	return c
}

// Allowed checks the sender against the allowlist. The address may be a
// bare address or a display-name form.
func (c *Checker) Allowed(from string) bool {
	if len(c.addresses) == 0 && len(c.domains) == 0 {
		return true
	}

	addr := strings.ToLower(routing.ExtractAddress(from))
	if c.addresses[addr] {
		c.debugAllowed(addr, "address")
		return true
	}

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return false
	}
	if c.domains[parts[1]] {
		c.debugAllowed(addr, "domain")
		return true
	}
	return false
}

func (c *Checker) debugAllowed(addr, by string) {
	if c.logger != nil {
		c.logger.Debug("Sender allowed", zap.String("address", addr), zap.String("matched_by", by))
	}
}
