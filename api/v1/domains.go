package v1

import (
	"errors"
	"strings"

	"github.com/database64128/regdomain/registry"
	"github.com/database64128/regdomain/resolver"
	"github.com/database64128/regdomain/stats"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MaxBatchHostnames is the maximum number of hostnames in one batch request.
const MaxBatchHostnames = 1024

// DomainManager handles domain resolution and registry management API requests.
type DomainManager struct {
	logger *zap.Logger
	holder *registry.Holder
	sc     stats.Collector
}

// NewDomainManager returns a new domain manager.
func NewDomainManager(logger *zap.Logger, holder *registry.Holder, sc stats.Collector) *DomainManager {
	return &DomainManager{
		logger: logger,
		holder: holder,
		sc:     sc,
	}
}

// Routes sets up routes for the domain, registry, and stats endpoints.
func (dm *DomainManager) Routes(v1 fiber.Router) {
	v1.Get("/domains/:hostname", dm.GetDomain)
	v1.Post("/domains", dm.ResolveDomains)

	v1.Get("/registry", dm.GetRegistry)
	v1.Post("/registry/reload", dm.ReloadRegistry)

	v1.Get("/stats", dm.GetStats)
}

// DomainResult is the resolution result of one hostname.
type DomainResult struct {
	Hostname string `json:"hostname"`
	Domain   string `json:"domain,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Match    string `json:"match,omitempty"`
	Error    string `json:"error,omitempty"`
}

// lookup resolves hostname against the current registry and records the outcome.
// The returned strings are copies, safe to keep after the request.
func (dm *DomainManager) lookup(hostname string) (DomainResult, error) {
	hostname = strings.Clone(hostname)
	res, err := resolver.Lookup(hostname, dm.holder.Load())
	if err != nil {
		dm.sc.Collect(0, err)
		return DomainResult{Hostname: hostname, Error: err.Error()}, err
	}
	dm.sc.Collect(res.Match, nil)
	return DomainResult{
		Hostname: hostname,
		Domain:   res.Domain,
		Suffix:   res.Suffix,
		Match:    res.Match.String(),
	}, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, resolver.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, resolver.ErrUnrecognizedDomain):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// GetDomain resolves the registrable domain of a hostname.
func (dm *DomainManager) GetDomain(c *fiber.Ctx) error {
	dr, err := dm.lookup(c.Params("hostname"))
	if err != nil {
		return sendError(c, statusForError(err), err.Error())
	}
	return c.JSON(&dr)
}

// DomainsRequest is the request body of a batch resolution.
type DomainsRequest struct {
	Hostnames []string `json:"hostnames"`
}

// DomainsResponse is the response body of a batch resolution.
type DomainsResponse struct {
	Results []DomainResult `json:"results"`
}

// ResolveDomains resolves a batch of hostnames.
// Failed lookups are reported per hostname and do not fail the request.
func (dm *DomainManager) ResolveDomains(c *fiber.Ctx) error {
	var req DomainsRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(req.Hostnames) > MaxBatchHostnames {
		return sendError(c, fiber.StatusBadRequest, "too many hostnames")
	}

	resp := DomainsResponse{
		Results: make([]DomainResult, len(req.Hostnames)),
	}
	for i, hostname := range req.Hostnames {
		resp.Results[i], _ = dm.lookup(hostname)
	}
	return c.JSON(&resp)
}

// GetRegistry returns information about the current registry.
func (dm *DomainManager) GetRegistry(c *fiber.Ctx) error {
	r := dm.holder.Load()
	if r == nil {
		return sendError(c, fiber.StatusServiceUnavailable, "no suffix list loaded")
	}
	info := r.Info()
	return c.JSON(&info)
}

// ReloadResult is the response body of a registry reload.
type ReloadResult struct {
	Changed  bool          `json:"changed"`
	Registry registry.Info `json:"registry"`
}

// ReloadRegistry reloads the suffix list from its file.
func (dm *DomainManager) ReloadRegistry(c *fiber.Ctx) error {
	r, changed, err := dm.holder.Reload()
	if err != nil {
		dm.logger.Warn("Failed to reload suffix list",
			zap.String("path", dm.holder.Config().Path),
			zap.Error(err),
		)
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	info := r.Info()
	if changed {
		dm.logger.Info("Reloaded suffix list",
			zap.String("name", info.Name),
			zap.Int("suffixes", info.Suffixes),
			zap.String("fingerprint", info.Fingerprint),
		)
	}
	return c.JSON(&ReloadResult{Changed: changed, Registry: info})
}

// GetStats returns lookup statistics.
func (dm *DomainManager) GetStats(c *fiber.Ctx) error {
	if c.QueryBool("clear", false) {
		return c.JSON(dm.sc.SnapshotAndReset())
	}
	return c.JSON(dm.sc.Snapshot())
}
