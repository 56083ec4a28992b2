package goSession

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/obs"
	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// Manager owns one session: the access/refresh pair persisted under the configured
// keys. It is the only writer of those keys.
//
// Token failures never surface as errors. CurrentPayload and RefreshIfNeeded answer
// "session present" or "session absent"; only Login and Logout return errors, and only
// for store faults and missing identity.
type Manager struct {
	config   Config
	codec    *token.Codec
	store    store.TokenStore
	closer   io.Closer
	logger   *zap.Logger
	metrics  *Metrics
	audit    *auditDispatcher
	resolver ClaimsResolver
	flows    flows.Deps
	closed   atomic.Bool
}

func (m *Manager) ready() bool {
	return m != nil && !m.closed.Load()
}

// Login mints an access token from claims and a refresh token from claims["userId"],
// then persists both as one unit. claims must carry a non-empty string userId.
//
// On a store fault no partial session is left behind and the returned error wraps
// ErrSessionCreationFailed.
func (m *Manager) Login(ctx context.Context, claims token.Payload) (TokenPair, error) {
	if !m.ready() {
		return TokenPair{}, ErrManagerNotReady
	}

	res := flows.RunLogin(ctx, claims, m.flows.Login)
	if res.Failure != flows.LoginFailureNone {
		err := res.Err
		switch res.Failure {
		case flows.LoginFailureUserID:
			err = ErrMissingUserID
		case flows.LoginFailurePersist:
			m.metricInc(MetricStoreFailure)
			m.logger.Warn("session persist failed", zap.String("user_id", res.UserID), zap.Error(res.Err))
			if res.CleanupErr != nil {
				m.logger.Error("partial session may remain after failed login",
					zap.String("user_id", res.UserID), zap.NamedError("cleanup_error", res.CleanupErr))
			}
			err = fmt.Errorf("%w: %v", ErrSessionCreationFailed, res.Err)
		default:
			m.logger.Error("session mint failed", zap.String("user_id", res.UserID), zap.Error(res.Err))
			err = fmt.Errorf("%w: %v", ErrSessionCreationFailed, res.Err)
		}
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, err, nil)
		return TokenPair{}, err
	}

	m.metricInc(MetricLoginSuccess)
	m.logger.Debug("session created",
		zap.String("user_id", res.UserID),
		zap.String("access", obs.TokenFingerprint(res.AccessToken)),
		zap.String("refresh", obs.TokenFingerprint(res.RefreshToken)))
	m.emitAudit(ctx, auditEventLoginSuccess, true, res.UserID, nil, nil)

	return TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
}

// CurrentPayload returns the verified payload of the stored access token. Absent,
// expired, tampered or unreadable tokens all report false.
func (m *Manager) CurrentPayload(ctx context.Context) (token.Payload, bool) {
	if !m.ready() {
		return nil, false
	}

	res := flows.RunCurrent(ctx, m.flows.Current)
	switch res.Failure {
	case flows.CurrentFailureNone:
		m.metricInc(MetricSessionActive)
		return res.Payload, true
	case flows.CurrentFailureAbsent:
		m.metricInc(MetricSessionAbsent)
	case flows.CurrentFailureRejected:
		m.metricInc(MetricTokenRejected)
		m.logger.Debug("stored access token rejected",
			zap.String("access", obs.TokenFingerprint(res.Token)),
			zap.Error(res.Err))
		m.emitAudit(ctx, auditEventSessionReject, false, "", res.Err, nil)
	case flows.CurrentFailureStoreRead:
		m.storeFailure(ctx, "current", res.Err)
	}
	return nil, false
}

// RefreshIfNeeded returns a usable access token. While the stored access token
// verifies it is returned unchanged. Otherwise the stored refresh token must verify
// and be of type "refresh"; a new access token is minted for its userId, persisted,
// and returned. On any failure it returns ("", false) and leaves the session as it
// was; the caller is expected to log in again.
func (m *Manager) RefreshIfNeeded(ctx context.Context) (string, bool) {
	if !m.ready() {
		return "", false
	}

	res := flows.RunRefresh(ctx, m.flows.Refresh)
	switch res.Failure {
	case flows.RefreshFailureNone:
		if !res.Refreshed {
			m.metricInc(MetricRefreshNotNeeded)
			return res.AccessToken, true
		}
		m.metricInc(MetricRefreshSuccess)
		m.logger.Debug("access token refreshed",
			zap.String("user_id", res.UserID),
			zap.String("access", obs.TokenFingerprint(res.AccessToken)),
			zap.NamedError("stale_reason", res.AccessErr))
		m.emitAudit(ctx, auditEventRefreshSuccess, true, res.UserID, nil, nil)
		return res.AccessToken, true

	case flows.RefreshFailureStoreRead, flows.RefreshFailureStoreWrite:
		m.storeFailure(ctx, "refresh", res.Err)
	case flows.RefreshFailureWrongType:
		m.metricInc(MetricRefreshWrongType)
		m.logger.Warn("refresh slot holds a non-refresh token")
	case flows.RefreshFailureResolveClaims:
		m.logger.Warn("claims resolver failed", zap.String("user_id", res.UserID), zap.Error(res.Err))
	case flows.RefreshFailureMint:
		m.logger.Error("refresh mint failed", zap.String("user_id", res.UserID), zap.Error(res.Err))
	case flows.RefreshFailureAbsent:
		res.Err = errSessionAbsent
	}

	m.metricInc(MetricRefreshFailure)
	m.emitAudit(ctx, auditEventRefreshFailure, false, res.UserID, res.Err, nil)
	return "", false
}

// Logout removes every session key. It is idempotent; on a store fault the returned
// error wraps ErrSessionInvalidationFailed.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.ready() {
		return ErrManagerNotReady
	}

	if err := flows.RunLogout(ctx, m.flows.Logout); err != nil {
		m.metricInc(MetricStoreFailure)
		m.logger.Warn("session removal failed", zap.Error(err))
		wrapped := fmt.Errorf("%w: %v", ErrSessionInvalidationFailed, err)
		m.emitAudit(ctx, auditEventLogoutFailure, false, "", wrapped, nil)
		return wrapped
	}

	m.metricInc(MetricLogout)
	m.emitAudit(ctx, auditEventLogout, true, "", nil, nil)
	return nil
}

// CachedUser returns the claim snapshot stored at login when Store.CacheUser is set.
// The snapshot is sealed with the signing secret; a missing, corrupt or edited snapshot
// reports false.
func (m *Manager) CachedUser(ctx context.Context) (token.Payload, bool) {
	if !m.ready() || m.config.Store.Keys.User == "" {
		return nil, false
	}

	raw, ok, err := m.store.Get(ctx, m.config.Store.Keys.User)
	if err != nil {
		m.storeFailure(ctx, "cached_user", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	user, err := m.codec.Open(raw)
	if err != nil {
		m.metricInc(MetricTokenRejected)
		m.logger.Warn("cached user snapshot rejected", zap.Error(err))
		return nil, false
	}
	return user, true
}

// Keys returns the storage keys this Manager writes.
func (m *Manager) Keys() store.Keys {
	if m == nil {
		return store.Keys{}
	}
	return m.config.Store.Keys
}

// Codec exposes the token codec, e.g. for inspecting tokens outside a session.
func (m *Manager) Codec() *token.Codec {
	if m == nil {
		return nil
	}
	return m.codec
}

// Close flushes queued audit events and releases a store opened by Build.
// Injected stores are left open. Close is idempotent.
func (m *Manager) Close() error {
	if m == nil || !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	if m.audit != nil {
		m.audit.Close()
	}
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}

// AuditDropped reports audit events lost to a full buffer or a cancelled context.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot copies the Manager's counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	m.metrics.Inc(id)
}

func (m *Manager) storeFailure(ctx context.Context, op string, err error) {
	m.metricInc(MetricStoreFailure)
	m.logger.Warn("token store fault", zap.String("op", op), zap.Error(err))
	m.emitAudit(ctx, auditEventStoreFailure, false, "", err, func() map[string]string {
		return map[string]string{"op": op}
	})
}

func (m *Manager) parseAccess(tok string) (token.Payload, error) {
	if !m.metrics.LatencyEnabled() {
		return m.codec.VerifyAccess(tok)
	}
	start := time.Now()
	payload, err := m.codec.VerifyAccess(tok)
	m.metrics.Observe(MetricVerifyLatency, time.Since(start))
	return payload, err
}

func (m *Manager) resolveClaims(ctx context.Context, userID string) (token.Payload, error) {
	claims, err := m.resolver.ResolveClaims(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimsUnavailable, err)
	}
	return claims, nil
}
