package dbal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/bratiask/dbal/types"
)

// Router is the connection routing state machine.
//
// It owns at most two live backend sessions (primary and replica), tracks
// which one is currently active, tracks transaction nesting depth, and
// applies the keep-replica policy. Sessions are opened lazily on the first
// routing decision that needs them.
//
// A Router serves a single logical session: it assumes at most one in-flight
// operation at a time and provides no internal locking. Use one router per
// concurrent logical session.
type Router struct {
	driver   Driver
	resolver *resolver
	opts     routerOptions

	keepReplica bool

	primary   Session
	replica   Session
	primaryID string
	replicaID string

	// active is the role of the slot currently serving operations.
	// Empty until the first connection is made.
	active types.Role

	// txDepth counts open (possibly savepoint-nested) transactions.
	// While positive, every routing decision resolves to the primary.
	txDepth int
}

// newRouter creates a router from a validated configuration.
func newRouter(cfg Config, driver Driver, opts routerOptions) *Router {
	return &Router{
		driver:      driver,
		resolver:    newResolver(cfg, opts.randSrc),
		opts:        opts,
		keepReplica: cfg.KeepReplica,
	}
}

// roleNone is the zero Role, meaning "no explicit target": default to
// replica routing for the first-ever connect, and keep the current session
// when one exists.
const roleNone = types.Role("")

// route decides, opens and remembers which backend session is active.
//
// hint may be roleNone, types.RolePrimary or types.RoleReplica. roleNone
// enforces stickiness: when any session is already active it is returned
// unchanged, preventing accidental reconnect loops.
//
// While a transaction is open the effective target is always the primary,
// overriding a replica hint. When that override fires (or the primary is
// opened) and keep-replica is disabled, the primary session is also
// assigned to the replica slot, so plain reads stay on the primary for the
// rest of the session.
//
// A driver failure surfaces as *types.ConnectionError, leaves the slot
// empty and is not retried; in particular no alternative replica is
// attempted, so partial outages stay visible.
func (r *Router) route(ctx context.Context, hint types.Role) (Session, error) {
	if hint == roleNone {
		if r.active != roleNone {
			return r.activeSession(), nil
		}
		// First-ever connect defaults to replica routing.
		hint = types.RoleReplica
	}

	effective := hint
	if r.txDepth > 0 && effective != types.RolePrimary {
		effective = types.RolePrimary
		r.opts.metrics.IncTxForced()
	}
	r.opts.metrics.IncRouteTotal(effective)

	if effective == types.RolePrimary {
		return r.routePrimary(ctx, hint)
	}

	return r.routeReplica(ctx)
}

// routePrimary activates the primary slot, opening it if needed.
// hint carries the original request, which may have been a replica request
// overridden by an open transaction.
func (r *Router) routePrimary(ctx context.Context, hint types.Role) (Session, error) {
	if r.primary != nil {
		r.active = types.RolePrimary
		if hint == types.RoleReplica && !r.keepReplica {
			r.adoptPrimaryAsReplica()
		}

		return r.primary, nil
	}

	session, id, err := r.connect(ctx, types.RolePrimary)
	if err != nil {
		return nil, err
	}

	r.primary = session
	r.primaryID = id
	r.active = types.RolePrimary
	if !r.keepReplica {
		r.adoptPrimaryAsReplica()
	}

	return r.primary, nil
}

// routeReplica activates the replica slot, opening it if needed.
func (r *Router) routeReplica(ctx context.Context) (Session, error) {
	if r.replica != nil {
		r.active = types.RoleReplica

		return r.replica, nil
	}

	session, id, err := r.connect(ctx, types.RoleReplica)
	if err != nil {
		return nil, err
	}

	r.replica = session
	r.replicaID = id
	r.active = types.RoleReplica

	return r.replica, nil
}

// connect resolves the slot configuration and opens a physical connection.
func (r *Router) connect(ctx context.Context, role types.Role) (Session, string, error) {
	cfg := r.resolver.Resolve(role)

	r.opts.metrics.IncConnectTotal(role)
	start := time.Now()

	session, err := r.driver.Connect(ctx, cfg)
	if err != nil {
		r.opts.metrics.IncConnectError(role)
		r.opts.logger.Error("backend connect failed",
			"role", role.String(), "host", cfg.Host, "error", err)

		return nil, "", &types.ConnectionError{Role: role, Cause: err}
	}

	r.opts.metrics.ObserveConnectDuration(role, time.Since(start).Seconds())

	id := uuid.NewString()
	r.opts.logger.Debug("backend connected",
		"role", role.String(), "conn_id", id, "host", cfg.Host, "database", cfg.Database)

	if r.opts.onConnect != nil {
		r.opts.onConnect(ConnectInfo{Role: role, ConnID: id, Config: cfg})
	}

	return session, id, nil
}

// adoptPrimaryAsReplica assigns the primary session to the replica slot.
//
// A previously opened, distinct replica session is closed before being
// displaced; the router would otherwise leak it, since it never re-selects
// a replica for the rest of its lifetime.
func (r *Router) adoptPrimaryAsReplica() {
	if r.replica == r.primary {
		return
	}

	if r.replica != nil {
		if err := r.replica.Close(); err != nil {
			r.opts.logger.Warn("closing displaced replica failed",
				"conn_id", r.replicaID, "error", err)
		}
	}

	r.replica = r.primary
	r.replicaID = r.primaryID
	r.opts.metrics.IncReplicaPromotion()
	r.opts.logger.Debug("replica slot now points at primary", "conn_id", r.primaryID)
}

// activeSession returns the session of the active slot, or nil when no
// connection exists yet.
func (r *Router) activeSession() Session {
	switch r.active {
	case types.RolePrimary:
		return r.primary
	case types.RoleReplica:
		return r.replica
	default:
		return nil
	}
}

// EnsurePrimary routes to the primary slot, opening it if needed.
// Every write-shaped or transaction-control operation calls this first.
func (r *Router) EnsurePrimary(ctx context.Context) (Session, error) {
	return r.route(ctx, types.RolePrimary)
}

// EnsureReplica routes to the replica slot, opening it if needed.
// An open transaction overrides this to the primary.
func (r *Router) EnsureReplica(ctx context.Context) (Session, error) {
	return r.route(ctx, types.RoleReplica)
}

// IsOnPrimary reports whether the active session is the primary session.
//
// This compares handles, not role labels: after a keep-replica=false
// promotion the replica slot holds the primary session, and reads served
// through it still count as "on primary".
func (r *Router) IsOnPrimary() bool {
	return r.primary != nil && r.activeSession() == r.primary
}

// TransactionDepth returns the current transaction nesting depth.
func (r *Router) TransactionDepth() int {
	return r.txDepth
}

// savepointName returns the savepoint identifier for a nesting level.
func savepointName(level int) string {
	return fmt.Sprintf("dbal_%d", level)
}

// BeginTransaction starts a transaction, or a savepoint when one is already
// open, and increments the nesting depth. Routing is forced to the primary.
func (r *Router) BeginTransaction(ctx context.Context) error {
	session, err := r.EnsurePrimary(ctx)
	if err != nil {
		return err
	}

	if r.txDepth == 0 {
		err = session.Begin(ctx)
	} else {
		err = session.Savepoint(ctx, savepointName(r.txDepth))
	}
	if err != nil {
		return err
	}

	r.txDepth++

	return nil
}

// Commit commits the innermost transaction level and decrements the nesting
// depth, floored at zero. At depth one (or zero) the commit is delegated to
// the session; deeper levels release their savepoint.
func (r *Router) Commit(ctx context.Context) error {
	session, err := r.EnsurePrimary(ctx)
	if err != nil {
		return err
	}

	if r.txDepth > 1 {
		err = session.ReleaseSavepoint(ctx, savepointName(r.txDepth-1))
	} else {
		err = session.Commit(ctx)
	}
	if err != nil {
		return err
	}

	if r.txDepth > 0 {
		r.txDepth--
	}

	return nil
}

// Rollback aborts the innermost transaction level and decrements the
// nesting depth, floored at zero. At depth one (or zero) the rollback is
// delegated to the session; deeper levels roll back to their savepoint.
func (r *Router) Rollback(ctx context.Context) error {
	session, err := r.EnsurePrimary(ctx)
	if err != nil {
		return err
	}

	if r.txDepth > 1 {
		err = session.RollbackToSavepoint(ctx, savepointName(r.txDepth-1))
	} else {
		err = session.Rollback(ctx)
	}
	if err != nil {
		return err
	}

	if r.txDepth > 0 {
		r.txDepth--
	}

	return nil
}

// Close releases both slots and resets the routing state. It is idempotent;
// the next operation after Close re-triggers the lazy connect path.
//
// Close errors from both sessions are aggregated.
func (r *Router) Close() error {
	var result *multierror.Error

	if r.primary != nil {
		if err := r.primary.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if r.replica != nil && r.replica != r.primary {
		if err := r.replica.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if r.primary != nil || r.replica != nil {
		r.opts.metrics.IncCloseTotal()
		r.opts.logger.Debug("router closed",
			"primary_conn_id", r.primaryID, "replica_conn_id", r.replicaID)
	}

	r.primary = nil
	r.replica = nil
	r.primaryID = ""
	r.replicaID = ""
	r.active = roleNone
	r.txDepth = 0

	return result.ErrorOrNil()
}
