package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mdoc-proximity/mdoc-go/pkg/cose"
	"github.com/mdoc-proximity/mdoc-go/pkg/storage"
)

// Authority errors.
var (
	ErrUnknownDocument  = errors.New("unknown document")
	ErrInvalidCondition = errors.New("operation not allowed in current condition")
)

// TableSpec is the storage table holding issuer records.
var TableSpec = storage.TableSpec{Name: "SimpleIssuingAuthority"}

// CredentialValidity is the validity period of issued credentials.
const CredentialValidity = 30 * 24 * time.Hour

// Default settings.
const (
	DefaultDelay              = time.Second
	DefaultNotificationBuffer = 16
)

// Option configures an Authority.
type Option func(*Authority)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(a *Authority) { a.clock = clock }
}

// WithDelay sets how long proofing and credential issuance take.
func WithDelay(d time.Duration) Option {
	return func(a *Authority) { a.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authority) { a.logger = l }
}

// WithNotificationBuffer sets the capacity of the notification channel.
func WithNotificationBuffer(n int) Option {
	return func(a *Authority) { a.bufferSize = n }
}

// Authority is a simple issuing authority backed by a storage table.
type Authority struct {
	table      storage.Table
	policy     Policy
	clock      func() time.Time
	delay      time.Duration
	logger     *slog.Logger
	bufferSize int

	// mu serializes load-modify-save of records.
	mu sync.Mutex

	notifyMu      sync.Mutex
	notifications chan Notification
	closed        bool
}

// New creates an authority storing its records in store.
func New(ctx context.Context, store storage.Storage, policy Policy, opts ...Option) (*Authority, error) {
	a := &Authority{
		policy:     policy,
		clock:      time.Now,
		delay:      DefaultDelay,
		logger:     slog.Default(),
		bufferSize: DefaultNotificationBuffer,
	}
	for _, opt := range opts {
		opt(a)
	}

	table, err := store.GetTable(ctx, TableSpec)
	if err != nil {
		return nil, fmt.Errorf("provisioning: open table: %w", err)
	}
	a.table = table
	a.notifications = make(chan Notification, a.bufferSize)
	return a, nil
}

// Notifications returns the channel state changes are announced on. It is
// closed by Close.
func (a *Authority) Notifications() <-chan Notification {
	return a.notifications
}

// Close stops notifications.
func (a *Authority) Close() error {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	if !a.closed {
		a.closed = true
		close(a.notifications)
	}
	return nil
}

func (a *Authority) notify(documentID string) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.notifications <- Notification{DocumentID: documentID}:
	default:
		a.logger.Warn("notification dropped, channel full", "document", documentID)
	}
}

func (a *Authority) load(ctx context.Context, documentID string) (*issuerDocument, error) {
	data, err := a.table.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, documentID)
	}
	return unmarshalIssuerDocument(data)
}

func (a *Authority) save(ctx context.Context, documentID string, doc *issuerDocument) error {
	data, err := doc.marshal()
	if err != nil {
		return fmt.Errorf("failed to encode issuer document: %w", err)
	}
	return a.table.Update(ctx, documentID, data)
}

// Register creates a new document in PROOFING_REQUIRED and returns its id.
func (a *Authority) Register(ctx context.Context, resp RegistrationResponse) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := newIssuerDocument(resp).marshal()
	if err != nil {
		return "", fmt.Errorf("failed to encode issuer document: %w", err)
	}
	id := "Document_" + uuid.NewString()
	if _, err := a.table.Insert(ctx, id, data); err != nil {
		return "", err
	}
	a.logger.Debug("document registered", "document", id)
	return id, nil
}

// AddCollectedEvidence records the response to a proofing step.
func (a *Authority) AddCollectedEvidence(ctx context.Context, documentID, nodeID string, ev Evidence) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx, documentID)
	if err != nil {
		return err
	}
	doc.Evidence[nodeID] = ev
	return a.save(ctx, documentID, doc)
}

// CompleteProof ends evidence collection. The evidence is evaluated once the
// proofing delay has passed.
func (a *Authority) CompleteProof(ctx context.Context, documentID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx, documentID)
	if err != nil {
		return err
	}
	doc.Condition = ConditionProofingProcessing
	doc.ProofingDeadline = a.clock().Add(a.delay).UnixMilli()
	if err := a.save(ctx, documentID, doc); err != nil {
		return err
	}
	a.notify(documentID)
	return nil
}

// GetState returns the current state of a document. Unknown documents report
// ConditionNoSuchDocument rather than an error.
func (a *Authority) GetState(ctx context.Context, documentID string) (DocumentState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	doc, err := a.load(ctx, documentID)
	if errors.Is(err, ErrUnknownDocument) {
		return DocumentState{Timestamp: now, Condition: ConditionNoSuchDocument}, nil
	}
	if err != nil {
		return DocumentState{}, err
	}

	if doc.Condition == ConditionProofingProcessing && now.UnixMilli() >= doc.ProofingDeadline {
		if a.policy.CheckEvidence(doc.Evidence) {
			doc.Condition = ConditionConfigurationAvailable
		} else {
			doc.Condition = ConditionProofingFailed
		}
		if err := a.save(ctx, documentID, doc); err != nil {
			return DocumentState{}, err
		}
		a.logger.Debug("proofing evaluated", "document", documentID, "condition", doc.Condition)
	}

	state := DocumentState{Timestamp: now, Condition: doc.Condition}
	for _, r := range doc.Requests {
		if r.available(now) {
			state.NumAvailableCredentialRequests++
		} else {
			state.NumPendingCredentialRequests++
		}
	}
	return state, nil
}

// GetDocumentConfiguration returns the configuration of a document in
// CONFIGURATION_AVAILABLE and moves it to READY. The configuration is
// generated on first use and kept afterwards.
func (a *Authority) GetDocumentConfiguration(ctx context.Context, documentID string) (DocumentConfiguration, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx, documentID)
	if err != nil {
		return DocumentConfiguration{}, err
	}
	if doc.Condition != ConditionConfigurationAvailable {
		return DocumentConfiguration{}, fmt.Errorf("%w: %s", ErrInvalidCondition, doc.Condition)
	}
	if doc.Configuration == nil {
		cfg, err := a.policy.GenerateDocumentConfiguration(doc.Evidence)
		if err != nil {
			return DocumentConfiguration{}, fmt.Errorf("generate document configuration: %w", err)
		}
		doc.Configuration = &cfg
	}
	doc.Condition = ConditionReady
	if err := a.save(ctx, documentID, doc); err != nil {
		return DocumentConfiguration{}, err
	}
	return *doc.Configuration, nil
}

// RequestCredentials returns the configuration the wallet must use for the
// keys of its credential requests. The document must be READY.
func (a *Authority) RequestCredentials(ctx context.Context, documentID string) (CredentialConfiguration, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx, documentID)
	if err != nil {
		return CredentialConfiguration{}, err
	}
	if doc.Condition != ConditionReady {
		return CredentialConfiguration{}, fmt.Errorf("%w: %s", ErrInvalidCondition, doc.Condition)
	}
	return a.policy.CreateCredentialConfiguration(doc.Evidence)
}

// AddCredentialRequests queues credentials for the given keys. Keys that
// already have a queued request are skipped. The credentials become
// available after the issuance delay.
func (a *Authority) AddCredentialRequests(ctx context.Context, documentID string, format CredentialFormat, requests []CredentialRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Configuration == nil {
		return fmt.Errorf("%w: no document configuration", ErrInvalidCondition)
	}

	deadline := a.clock().Add(a.delay).UnixMilli()
	for _, req := range requests {
		if req.AuthenticationKey == nil {
			return errors.New("credential request without authentication key")
		}
		if doc.hasRequestFor(req.AuthenticationKey) {
			a.logger.Debug("credential request already queued for key", "document", documentID)
			continue
		}
		encodedKey, err := cose.EncodePublicKey(req.AuthenticationKey)
		if err != nil {
			return fmt.Errorf("encode authentication key: %w", err)
		}
		data, err := a.policy.CreatePresentationData(format, *doc.Configuration, req.AuthenticationKey)
		if err != nil {
			return fmt.Errorf("create presentation data: %w", err)
		}
		doc.Requests = append(doc.Requests, credentialRequest{
			AuthenticationKey: encodedKey,
			Format:            format,
			Data:              data,
			Deadline:          deadline,
		})
	}
	if err := a.save(ctx, documentID, doc); err != nil {
		return err
	}
	a.notify(documentID)
	return nil
}

// GetCredentials returns the credentials whose deadline has passed and
// removes them from the queue.
func (a *Authority) GetCredentials(ctx context.Context, documentID string) ([]CredentialData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	doc, err := a.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var available []CredentialData
	pending := []credentialRequest{}
	for _, r := range doc.Requests {
		if !r.available(now) {
			pending = append(pending, r)
			continue
		}
		key, err := cose.DecodePublicKey(r.AuthenticationKey)
		if err != nil {
			return nil, fmt.Errorf("decode authentication key: %w", err)
		}
		available = append(available, CredentialData{
			AuthenticationKey: key,
			ValidFrom:         now,
			ValidUntil:        now.Add(CredentialValidity),
			Format:            r.Format,
			Data:              r.Data,
		})
	}
	doc.Requests = pending
	if err := a.save(ctx, documentID, doc); err != nil {
		return nil, err
	}
	return available, nil
}

// DeveloperModeRequestUpdate simulates an issuer-initiated change. With
// requestRemoteDeletion the document is deleted; otherwise its configuration
// is updated through the Policy, queued credentials are dropped and the
// document goes back to CONFIGURATION_AVAILABLE.
func (a *Authority) DeveloperModeRequestUpdate(ctx context.Context, documentID string, requestRemoteDeletion, notifyApplication bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if requestRemoteDeletion {
		if _, err := a.table.Delete(ctx, documentID); err != nil {
			return err
		}
		if notifyApplication {
			a.notify(documentID)
		}
		return nil
	}

	doc, err := a.load(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Configuration == nil {
		return fmt.Errorf("%w: no document configuration", ErrInvalidCondition)
	}
	updated, err := a.policy.DeveloperModeRequestUpdate(*doc.Configuration)
	if err != nil {
		return fmt.Errorf("developer mode update: %w", err)
	}
	doc.Configuration = &updated
	doc.Condition = ConditionConfigurationAvailable
	doc.Requests = []credentialRequest{}
	if err := a.save(ctx, documentID, doc); err != nil {
		return err
	}
	if notifyApplication {
		a.notify(documentID)
	}
	return nil
}
