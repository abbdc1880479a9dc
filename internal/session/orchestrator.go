// Package session owns the wallet connection lifecycle: manual connect
// with flavor detection and retry, persisted auto-connect on startup,
// disconnect, and reaction to wallet-side account loss.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"nftmarket/walletbridge/internal/config"
	"nftmarket/walletbridge/internal/database"
	"nftmarket/walletbridge/internal/models"
	"nftmarket/walletbridge/internal/provider"
)

// Wallet is the account-granting collaborator the orchestrator drives.
// Connect performs the handshake and returns the primary account;
// CurrentAccount reports the active account without prompting, empty
// when the wallet exposes none.
type Wallet interface {
	Connect(ctx context.Context) (string, error)
	CurrentAccount(ctx context.Context) (string, error)
}

// FlavorDetector identifies which wallet implementation is answering
type FlavorDetector interface {
	DetectFlavor(ctx context.Context) (models.WalletFlavor, error)
}

// Orchestrator is the connection state machine. All exported methods
// are safe for concurrent use; stale provider responses and timers are
// dropped via a monotonic attempt counter.
type Orchestrator struct {
	wallet   Wallet // nil when no provider is configured
	detector FlavorDetector
	store    database.ConnectionStore
	notifier Notifier
	policy   config.ConnectConfig
	logger   *zap.Logger

	mu         sync.Mutex
	phase      models.ConnectionPhase
	account    string
	flavor     models.WalletFlavor
	progress   int
	retryCount int
	lastWallet string
	attempt    uint64
}

// NewOrchestrator creates the orchestrator. wallet and detector may be
// nil when no provider is configured; connects then fail with the
// no-provider message until one is available.
func NewOrchestrator(
	wallet Wallet,
	detector FlavorDetector,
	store database.ConnectionStore,
	notifier Notifier,
	policy config.ConnectConfig,
	logger *zap.Logger,
) *Orchestrator {
	logger = logger.Named("session")
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Orchestrator{
		wallet:   wallet,
		detector: detector,
		store:    store,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
		phase:    models.PhaseIdle,
		flavor:   models.FlavorUnknown,
	}
}

// State returns a snapshot of the session
func (o *Orchestrator) State() models.SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return models.SessionState{
		Account:    o.account,
		Flavor:     o.flavor,
		Phase:      o.phase,
		Progress:   o.progress,
		RetryCount: o.retryCount,
		LastWallet: o.lastWallet,
	}
}

// Connect runs one manual connection attempt. The returned value
// covers this attempt only: a failed attempt may still schedule a
// retry that resolves later, so callers should watch the phase for the
// final outcome. A call made while auto-connect is in progress is a
// no-op.
func (o *Orchestrator) Connect(ctx context.Context) bool {
	o.mu.Lock()
	if o.phase == models.PhaseAutoConnecting {
		o.mu.Unlock()
		o.logger.Debug("Connect ignored, auto-connect in progress")
		return false
	}
	o.attempt++
	attempt := o.attempt
	o.phase = models.PhaseConnecting
	// A reconnect gives up the current account; Connected and a
	// non-empty account always hold or fall together.
	o.account = ""
	o.progress = 10
	o.mu.Unlock()
	o.notifier.Progress(10)

	if o.wallet == nil || o.detector == nil {
		o.failAttempt(attempt, models.FlavorUnknown, provider.ErrNoProvider)
		return false
	}

	flavor, err := o.detector.DetectFlavor(ctx)
	if err != nil {
		o.failAttempt(attempt, models.FlavorUnknown, err)
		return false
	}

	o.mu.Lock()
	if attempt != o.attempt {
		o.mu.Unlock()
		return false
	}
	o.flavor = flavor
	o.progress = 30
	o.mu.Unlock()
	o.notifier.Progress(30)

	// Cosmetic progress keeps moving toward 90 while the handshake is
	// in flight; stopped before the phase can leave Connecting.
	stopTicker := o.startProgressTicker(attempt)

	account, err := o.wallet.Connect(ctx)
	close(stopTicker)

	if err != nil {
		o.failAttempt(attempt, flavor, err)
		return false
	}

	o.mu.Lock()
	if attempt != o.attempt {
		// A newer attempt superseded this one while the provider
		// response was outstanding; drop it.
		o.mu.Unlock()
		return false
	}
	o.phase = models.PhaseConnected
	o.account = account
	o.flavor = flavor
	o.progress = 100
	o.retryCount = 0
	o.lastWallet = string(flavor)
	o.mu.Unlock()

	o.notifier.Progress(100)
	o.persistRecord(ctx, models.ConnectionRecord{LastWallet: string(flavor), AutoConnect: true})
	o.notifier.Success("Wallet connected successfully!")
	o.scheduleProgressReset(attempt)

	o.logger.Info("Wallet connected",
		zap.String("account", account),
		zap.String("flavor", string(flavor)))
	return true
}

// failAttempt handles a failed manual connect: report it, then either
// schedule a retry on the linear backoff schedule or go terminal. A
// failure from a superseded attempt is dropped whole, toast included.
func (o *Orchestrator) failAttempt(attempt uint64, flavor models.WalletFlavor, err error) {
	o.mu.Lock()
	if attempt != o.attempt {
		o.mu.Unlock()
		return
	}

	// The request has resolved; progress jumps to 100 either way and
	// resets shortly after.
	o.progress = 100

	retrying := o.retryCount < o.policy.MaxRetries
	var delay time.Duration
	var retry int
	if retrying {
		delay = o.retryDelay(o.retryCount)
		o.retryCount++
		retry = o.retryCount
	} else {
		o.phase = models.PhaseFailed
	}
	o.mu.Unlock()

	o.notifier.Progress(100)
	o.notifier.Error(failureMessage(flavor, err))
	o.logger.Warn("Wallet connection failed",
		zap.String("flavor", string(flavor)),
		zap.Error(err))

	if retrying {
		o.logger.Info("Scheduling connect retry",
			zap.Int("retry", retry),
			zap.Duration("delay", delay))
		time.AfterFunc(delay, func() {
			o.mu.Lock()
			stale := attempt != o.attempt || o.phase == models.PhaseConnected
			o.mu.Unlock()
			if stale {
				return
			}
			o.Connect(context.Background())
		})
	} else {
		o.logger.Warn("Connect retries exhausted",
			zap.Int("retries", o.policy.MaxRetries))
		o.clearRecord(context.Background(), "retries exhausted")
	}

	o.scheduleProgressReset(attempt)
}

// retryDelay is the linear backoff schedule: base * (count + 1),
// i.e. 5s, 10s, 15s with the defaults
func (o *Orchestrator) retryDelay(count int) time.Duration {
	return o.policy.RetryBaseDelay * time.Duration(count+1)
}

// startProgressTicker advances progress by 10 toward 90 on a fixed
// interval while the attempt is still the current one and connecting
func (o *Orchestrator) startProgressTicker(attempt uint64) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(o.policy.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				o.mu.Lock()
				if attempt != o.attempt || o.phase != models.PhaseConnecting || o.progress >= 90 {
					o.mu.Unlock()
					continue
				}
				o.progress += 10
				pct := o.progress
				o.mu.Unlock()
				o.notifier.Progress(pct)
			}
		}
	}()
	return stop
}

// scheduleProgressReset clears the progress bar shortly after an
// attempt resolves, unless a newer attempt has started
func (o *Orchestrator) scheduleProgressReset(attempt uint64) {
	time.AfterFunc(o.policy.ProgressResetDelay, func() {
		o.mu.Lock()
		if attempt != o.attempt {
			o.mu.Unlock()
			return
		}
		o.progress = 0
		o.mu.Unlock()
		o.notifier.Progress(0)
	})
}

// AutoConnect restores the previous wallet session once at startup.
// It runs only when a persisted record with the auto-connect flag
// exists and no account is active. Failures are not retried: the
// record is cleared so a broken wallet does not wedge every startup.
func (o *Orchestrator) AutoConnect(ctx context.Context) {
	rec, ok, err := o.store.ReadRecord(ctx)
	if err != nil {
		// A failed read behaves as "no record present"
		o.logger.Warn("Failed to read connection record", zap.Error(err))
		return
	}
	if !ok || !rec.AutoConnect || rec.LastWallet == "" {
		return
	}

	o.mu.Lock()
	if o.account != "" || o.phase != models.PhaseIdle {
		o.mu.Unlock()
		return
	}
	o.attempt++
	attempt := o.attempt
	o.phase = models.PhaseAutoConnecting
	o.mu.Unlock()

	o.logger.Info("Auto-connecting to last wallet",
		zap.String("last_wallet", rec.LastWallet))

	if o.wallet == nil {
		o.autoConnectFailed(ctx, attempt, provider.ErrNoProvider)
		return
	}

	account, err := o.wallet.Connect(ctx)
	if err != nil {
		o.autoConnectFailed(ctx, attempt, err)
		return
	}

	o.mu.Lock()
	if attempt != o.attempt {
		o.mu.Unlock()
		return
	}
	o.phase = models.PhaseConnected
	o.account = account
	o.flavor = models.ParseFlavor(rec.LastWallet)
	o.lastWallet = rec.LastWallet
	o.retryCount = 0
	o.mu.Unlock()

	o.logger.Info("Wallet session restored",
		zap.String("account", account),
		zap.String("flavor", rec.LastWallet))
}

func (o *Orchestrator) autoConnectFailed(ctx context.Context, attempt uint64, err error) {
	o.logger.Warn("Auto-connect failed", zap.Error(err))

	o.mu.Lock()
	if attempt == o.attempt && o.phase == models.PhaseAutoConnecting {
		o.phase = models.PhaseIdle
	}
	o.mu.Unlock()

	o.clearRecord(ctx, "auto-connect failure")
}

// Disconnect tears the session down and clears the persisted record
func (o *Orchestrator) Disconnect(ctx context.Context) {
	o.mu.Lock()
	o.attempt++ // invalidates in-flight attempts and pending timers
	o.phase = models.PhaseIdle
	o.account = ""
	o.flavor = models.FlavorUnknown
	o.progress = 0
	o.retryCount = 0
	o.lastWallet = ""
	o.mu.Unlock()

	o.clearRecord(ctx, "disconnect")
	o.notifier.Success("Wallet disconnected")
	o.logger.Info("Wallet disconnected")
}

// HandleAccountsChanged reacts to the provider's account set changing.
// An empty set means the wallet disconnected on its side: the session
// resets and the persisted record is cleared regardless of which path
// caused the loss.
func (o *Orchestrator) HandleAccountsChanged(ctx context.Context, accounts []string) {
	if len(accounts) > 0 {
		o.mu.Lock()
		if o.phase == models.PhaseConnected {
			o.account = accounts[0]
		}
		o.mu.Unlock()
		return
	}

	o.mu.Lock()
	wasConnected := o.phase == models.PhaseConnected
	o.attempt++
	o.phase = models.PhaseIdle
	o.account = ""
	o.progress = 0
	o.mu.Unlock()

	if wasConnected {
		o.logger.Info("Wallet account lost, session reset")
	}
	o.clearRecord(ctx, "account lost")
}

// WatchAccounts polls the wallet for account loss while connected.
// Blocks until ctx is cancelled.
func (o *Orchestrator) WatchAccounts(ctx context.Context) {
	if o.wallet == nil {
		return
	}

	ticker := time.NewTicker(o.policy.AccountPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Account watcher stopping")
			return
		case <-ticker.C:
			o.checkAccount(ctx)
		}
	}
}

func (o *Orchestrator) checkAccount(ctx context.Context) {
	o.mu.Lock()
	connected := o.phase == models.PhaseConnected
	o.mu.Unlock()
	if !connected {
		return
	}

	current, err := o.wallet.CurrentAccount(ctx)
	if err != nil {
		o.logger.Debug("Account poll failed", zap.Error(err))
		return
	}
	if current == "" {
		o.HandleAccountsChanged(ctx, nil)
	}
}

// persistRecord writes the record; failures are logged and otherwise
// ignored so persistence can never block a connection
func (o *Orchestrator) persistRecord(ctx context.Context, rec models.ConnectionRecord) {
	if err := o.store.WriteRecord(ctx, rec); err != nil {
		o.logger.Warn("Failed to persist connection record", zap.Error(err))
	}
}

func (o *Orchestrator) clearRecord(ctx context.Context, reason string) {
	if err := o.store.ClearRecord(ctx); err != nil {
		o.logger.Warn("Failed to clear connection record",
			zap.String("reason", reason),
			zap.Error(err))
	}
}
