package lab

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/medlab/medlab/internal/platform/apperr"
	"github.com/medlab/medlab/internal/platform/auth"
	"github.com/medlab/medlab/internal/platform/patch"
)

// Service implements registration, login and lab CRUD on top of the
// repository.
type Service struct {
	repo   Repository
	issuer *auth.Issuer
}

func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// UpsertInput is the write shape shared by registration, create and put.
// Password carries plaintext in transit and is hashed before storage.
type UpsertInput struct {
	LabEmail   string
	Password   string
	LabName    string
	LabAddress string
}

// Register creates a new lab account. Duplicate emails are rejected with a
// conflict. The uniqueness check is best-effort check-then-insert: two
// concurrent registrations of the same email can both pass it, matching the
// store's per-key consistency model.
func (s *Service) Register(ctx context.Context, in UpsertInput) (*Lab, error) {
	var fields []string
	if !validEmail(in.LabEmail) {
		fields = append(fields, "labEmail")
	}
	if in.Password == "" {
		fields = append(fields, "passwordHash")
	}
	if in.LabName == "" {
		fields = append(fields, "labName")
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	_, err := s.repo.GetByEmail(ctx, in.LabEmail)
	if err == nil {
		return nil, apperr.Conflict("email %s is already registered", in.LabEmail)
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	digest, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	l := &Lab{
		LabID:        uuid.NewString(),
		LabEmail:     in.LabEmail,
		PasswordHash: digest,
		LabName:      in.LabName,
		LabAddress:   in.LabAddress,
		Reports:      []Report{},
	}
	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token    string `json:"token"`
	LabID    string `json:"labId"`
	LabEmail string `json:"labEmail"`
	LabName  string `json:"labName"`
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password produce the same unauthorized error, so responses do
// not reveal which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Invalid("email and password are required")
	}

	l, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(password, l.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.issuer.Issue(l.LabID, l.LabEmail)
	if err != nil {
		return nil, apperr.Internal(err, "issue token")
	}

	return &LoginResult{
		Token:    token,
		LabID:    l.LabID,
		LabEmail: l.LabEmail,
		LabName:  l.LabName,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]*Lab, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, labID string) (*Lab, error) {
	return s.repo.GetByID(ctx, labID)
}

// Create inserts a lab under a freshly generated id.
func (s *Service) Create(ctx context.Context, in UpsertInput) (*Lab, error) {
	l := &Lab{
		LabID:      uuid.NewString(),
		LabEmail:   in.LabEmail,
		LabName:    in.LabName,
		LabAddress: in.LabAddress,
		Reports:    []Report{},
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if in.Password != "" {
		digest, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, apperr.Internal(err, "hash password")
		}
		l.PasswordHash = digest
	}
	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update replaces the lab's own fields, keeping its id, reports, and — when
// no new password is supplied — its stored credential.
func (s *Service) Update(ctx context.Context, labID string, in UpsertInput) (*Lab, error) {
	l, err := s.repo.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	l.LabEmail = in.LabEmail
	l.LabName = in.LabName
	l.LabAddress = in.LabAddress
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if in.Password != "" {
		digest, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, apperr.Internal(err, "hash password")
		}
		l.PasswordHash = digest
	}

	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, labID string) error {
	existed, err := s.repo.Delete(ctx, labID)
	if err != nil {
		return err
	}
	if !existed {
		return apperr.NotFound("lab %s not found", labID)
	}
	return nil
}

// PatchSparse merges a sparse patch document into the lab and validates the
// result before committing. A failing validation leaves the stored document
// untouched.
func (s *Service) PatchSparse(ctx context.Context, labID string, p Patch) (*Lab, error) {
	l, err := s.repo.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	if err := p.Apply(l, auth.HashPassword); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// PatchOps applies a JSON Patch (RFC 6902) document to the lab's patchable
// fields. The operations run against an intermediate map representation; the
// result is folded back through the sparse merge, so the same validation and
// password-rehash rules hold.
func (s *Service) PatchOps(ctx context.Context, labID string, ops []patch.Operation) (*Lab, error) {
	l, err := s.repo.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	// passwordHash starts empty: only an operation that sets it triggers a
	// rehash, and it carries plaintext like the sparse patch does.
	doc := map[string]interface{}{
		"labName":      l.LabName,
		"labEmail":     l.LabEmail,
		"labAddress":   l.LabAddress,
		"passwordHash": "",
	}

	merged, err := patch.Apply(doc, ops)
	if err != nil {
		return nil, apperr.Invalid("apply patch: %v", err)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, apperr.Internal(err, "encode patched document")
	}
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperr.Invalid("patched document has invalid field types")
	}

	if err := p.Apply(l, auth.HashPassword); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
