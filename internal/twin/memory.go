package twin

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken     = errors.New("email already registered")
	errBadCredentials = errors.New("invalid email or password")
	errUnknownRefresh = errors.New("invalid refresh token")
	errStudioNotFound = errors.New("studio not found")
)

// MemoryStore holds all twin state in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]User   // by email
	refresh map[string]string // refresh token -> user id
	studios []Studio
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   map[string]User{},
		refresh: map[string]string{},
		now:     time.Now,
	}
}

// AddUser registers an account.
func (s *MemoryStore) AddUser(name, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return User{}, errEmailTaken
	}
	user := User{ID: uuid.NewString(), Name: strings.TrimSpace(name), Email: email, Role: "user", PasswordHash: hash}
	s.users[email] = user
	return user, nil
}

// Authenticate checks a password.
func (s *MemoryStore) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()
	if !ok {
		return User{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, errBadCredentials
	}
	return user, nil
}

// IssueRefreshToken creates a refresh token for userID.
func (s *MemoryStore) IssueRefreshToken(userID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.refresh[token] = userID
	s.mu.Unlock()
	return token
}

// LookupRefreshToken returns the user a refresh token belongs to.
func (s *MemoryStore) LookupRefreshToken(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.refresh[token]
	if !ok {
		return "", errUnknownRefresh
	}
	return id, nil
}

// RevokeRefreshTokens forgets every refresh token.
func (s *MemoryStore) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refresh = map[string]string{}
	s.mu.Unlock()
}

// StudioFilter narrows ListStudios.
type StudioFilter struct {
	Location   string
	PriceRange string // "min-max", "min-" or "-max"
	Rating     string // minimum rating
	SearchTerm string
}

// ListStudios returns the studios matching f in insertion order.
func (s *MemoryStore) ListStudios(f StudioFilter) []Studio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	minPrice, maxPrice := parseRange(f.PriceRange)
	minRating, _ := strconv.ParseFloat(strings.TrimSpace(f.Rating), 64)
	location := strings.ToLower(strings.TrimSpace(f.Location))
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))

	out := []Studio{}
	for _, st := range s.studios {
		if location != "" && !strings.Contains(strings.ToLower(st.Location), location) {
			continue
		}
		if st.PricePerHour < minPrice || (maxPrice > 0 && st.PricePerHour > maxPrice) {
			continue
		}
		if st.Rating < minRating {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(st.Name+" "+st.Description), term) {
			continue
		}
		out = append(out, cloneStudio(st))
	}
	return out
}

// GetStudio returns one studio.
func (s *MemoryStore) GetStudio(id string) (Studio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Studio{}, errStudioNotFound
	}
	return cloneStudio(s.studios[idx]), nil
}

// CreateStudio stores st under a fresh id.
func (s *MemoryStore) CreateStudio(st Studio) Studio {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp := s.now().UTC().Format(time.RFC3339Nano)
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.CreatedAt, st.UpdatedAt = stamp, stamp
	if st.Amenities == nil {
		st.Amenities = []string{}
	}
	if st.Reviews == nil {
		st.Reviews = []byte("[]")
	}
	s.studios = append(s.studios, st)
	return cloneStudio(st)
}

// UpdateStudio applies fn to the stored studio.
func (s *MemoryStore) UpdateStudio(id string, fn func(*Studio)) (Studio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Studio{}, errStudioNotFound
	}
	st := cloneStudio(s.studios[idx])
	fn(&st)
	st.ID = id
	st.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
	s.studios[idx] = st
	return cloneStudio(st), nil
}

// DeleteStudio removes a studio.
func (s *MemoryStore) DeleteStudio(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return errStudioNotFound
	}
	s.studios = slices.Delete(s.studios, idx, idx+1)
	return nil
}

func (s *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.studios, func(st Studio) bool { return st.ID == id })
}

func cloneStudio(st Studio) Studio {
	st.Amenities = slices.Clone(st.Amenities)
	st.Reviews = slices.Clone(st.Reviews)
	return st
}

func parseRange(value string) (float64, float64) {
	lo, hi, found := strings.Cut(strings.TrimSpace(value), "-")
	if !found {
		return 0, 0
	}
	minPrice, _ := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	maxPrice, _ := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	return minPrice, maxPrice
}

func (s *MemoryStore) userByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
