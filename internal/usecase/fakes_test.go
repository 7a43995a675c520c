package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/data/repository"

	"github.com/google/uuid"
)

// in-memory stores keep copies so services cannot mutate state without Update

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*entity.User
	updates int
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.Status != nil {
		s := *u.Status
		c.Status = &s
	}
	if u.OTP != nil {
		o := *u.OTP
		c.OTP = &o
	}
	return &c
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, cloneUser(u))
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeUserRepo) CountAll(_ context.Context, filter repository.UserFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if filter.Role == nil || u.Role == *filter.Role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = cloneUser(user)
	r.updates++
	return nil
}

func (r *fakeUserRepo) get(email string) *entity.User {
	u, _ := r.FindByEmail(context.Background(), email)
	return u
}

func (r *fakeUserRepo) put(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

type fakeResetTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeResetTokens() *fakeResetTokens {
	return &fakeResetTokens{tokens: map[string]string{}}
}

func (f *fakeResetTokens) Save(_ context.Context, email, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[email] = token
	return nil
}

func (f *fakeResetTokens) Consume(_ context.Context, email, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[email]
	if !ok || token == "" || stored != token {
		return false, nil
	}
	delete(f.tokens, email)
	return true, nil
}

type sentOTP struct {
	To   string
	Code string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentOTP
	err  error
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentOTP{To: to, Code: code})
	return nil
}

func (m *fakeMailer) last() sentOTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentOTP{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entity.Category
	referenced map[uuid.UUID]bool
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[uuid.UUID]*entity.Category{}, referenced: map[uuid.UUID]bool{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return repository.ErrDuplicateName
		}
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	if c, ok := r.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCategoryRepo) FindAll(_ context.Context) ([]*entity.Category, error) {
	out := make([]*entity.Category, 0, len(r.categories))
	for _, c := range r.categories {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.categories {
		if id != c.ID && existing.Name == c.Name {
			return repository.ErrDuplicateName
		}
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	if r.referenced[id] {
		return repository.ErrStillReferenced
	}
	delete(r.categories, id)
	return nil
}

type fakeBookRepo struct {
	books map[uuid.UUID]*entity.Book
	users *fakeUserRepo
	cats  *fakeCategoryRepo
}

func (r *fakeBookRepo) Create(_ context.Context, b *entity.Book) error {
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeBookRepo) detail(b *entity.Book) *entity.BookDetail {
	d := &entity.BookDetail{Book: *b}
	if a, _ := r.users.FindByID(context.Background(), b.AuthorID); a != nil {
		d.AuthorName = a.Username
	}
	if p, _ := r.users.FindByID(context.Background(), b.PublisherID); p != nil {
		d.PublisherName = p.Username
	}
	if c, _ := r.cats.FindByID(context.Background(), b.CategoryID); c != nil {
		d.CategoryName = c.Name
	}
	return d
}

func (r *fakeBookRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.BookDetail, error) {
	if b, ok := r.books[id]; ok {
		return r.detail(b), nil
	}
	return nil, nil
}

func (r *fakeBookRepo) matches(b *entity.Book, f repository.BookFilter) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.PublisherID != nil && b.PublisherID != *f.PublisherID {
		return false
	}
	if f.AuthorID != nil && b.AuthorID != *f.AuthorID {
		return false
	}
	if f.CategoryID != nil && b.CategoryID != *f.CategoryID {
		return false
	}
	return f.Title == "" || strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Title))
}

func (r *fakeBookRepo) FindAll(_ context.Context, f repository.BookFilter, limit, offset int) ([]*entity.BookDetail, error) {
	var out []*entity.BookDetail
	for _, b := range r.books {
		if r.matches(b, f) {
			out = append(out, r.detail(b))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	if end := offset + limit; end < len(out) {
		out = out[:end]
	}
	return out[offset:], nil
}

func (r *fakeBookRepo) CountAll(_ context.Context, f repository.BookFilter) (int64, error) {
	var n int64
	for _, b := range r.books {
		if r.matches(b, f) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookRepo) Update(_ context.Context, b *entity.Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.books[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

var errStoreDown = errors.New("store down")
