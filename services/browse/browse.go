package browse

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/model"
	"github.com/teancom/RoonKit/roon"
)

const servicePath = "com.roonlabs.browse:1"

// Service wraps a roon.Connection with the browse/load call shape.
// Per spec.md §4.5 it is a single serialized session: it caches only
// currentHierarchy, currentLevel, and currentList, updated after every
// browse call, and a caller driving two browse walks concurrently
// needs two Services (optionally both multi-session, see WithMultiSession).
type Service struct {
	conn    *roon.Connection
	Timeout time.Duration

	sessionKey string // non-empty when multi-session is enabled

	mu               sync.Mutex
	currentHierarchy string
	currentLevel     int
	currentList      *model.BrowseList
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithMultiSession enables Roon's multi-session browse mode: a
// freshly generated UUID is included as multi_session_key in every
// browse/load body, letting the Core distinguish this session's
// browse state from any other concurrent session on the same
// extension (spec.md §6).
func WithMultiSession() Option {
	return func(s *Service) { s.sessionKey = uuid.New().String() }
}

// New wraps conn.
func New(conn *roon.Connection, opts ...Option) *Service {
	s := &Service{conn: conn}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) send(method string, body map[string]interface{}) (*codec.Response, error) {
	if body == nil {
		body = map[string]interface{}{}
	}
	if s.sessionKey != "" {
		body["multi_session_key"] = s.sessionKey
	}
	resp, err := s.conn.Send(servicePath+"/"+method, body, s.Timeout)
	if err != nil {
		return nil, err
	}
	if !codec.IsSuccess(resp.Name) {
		return resp, fmt.Errorf("%s: %s", method, resp.ErrorMessage())
	}
	return resp, nil
}

// Result is a browse/load response's reusable shape: the current list
// metadata (when the new level is a list) and, for load, its items.
type Result struct {
	List  *model.BrowseList
	Items []model.BrowseItem
}

func (s *Service) recordBrowseResult(hierarchy string, resp *codec.Response) (Result, error) {
	list, err := model.ParseBrowseList(resp.Body)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	s.currentHierarchy = hierarchy
	if list != nil {
		s.currentLevel = list.Level
		s.currentList = list
	}
	s.mu.Unlock()

	return Result{List: list}, nil
}

// BrowseHierarchy enters the root of a named hierarchy (e.g.
// "browse", "albums", "internet_radio").
func (s *Service) BrowseHierarchy(hierarchy, zoneOrOutputID string) (Result, error) {
	body := map[string]interface{}{"hierarchy": hierarchy}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	resp, err := s.send("browse", body)
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(hierarchy, resp)
}

// BrowseItem drills into a specific item by its item_key.
func (s *Service) BrowseItem(itemKey, zoneOrOutputID string) (Result, error) {
	body := map[string]interface{}{"item_key": itemKey}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	resp, err := s.send("browse", body)
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(s.Hierarchy(), resp)
}

// Refresh re-fetches the current level without changing position.
func (s *Service) Refresh() (Result, error) {
	resp, err := s.send("browse", map[string]interface{}{"refresh_list": true})
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(s.Hierarchy(), resp)
}

// Back pops one level off the browse stack.
func (s *Service) Back() (Result, error) {
	resp, err := s.send("browse", map[string]interface{}{"pop_levels": 1})
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(s.Hierarchy(), resp)
}

// BackToRoot pops every level, returning to the hierarchy's root.
func (s *Service) BackToRoot() (Result, error) {
	resp, err := s.send("browse", map[string]interface{}{"pop_all": true})
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(s.Hierarchy(), resp)
}

// SetDisplayOffset scrolls the current list's display position
// without changing the loaded items.
func (s *Service) SetDisplayOffset(offset int) (Result, error) {
	resp, err := s.send("browse", map[string]interface{}{"set_display_offset": offset})
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(s.Hierarchy(), resp)
}

// Search submits text input to the current level's search/input
// prompt.
func (s *Service) Search(input, zoneOrOutputID string) (Result, error) {
	body := map[string]interface{}{"input": input}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	resp, err := s.send("browse", body)
	if err != nil {
		return Result{}, err
	}
	return s.recordBrowseResult(s.Hierarchy(), resp)
}

// Load fetches a page of items from the current level.
func (s *Service) Load(offset, count int) (Result, error) {
	hierarchy, level := s.Hierarchy(), s.Level()
	body := map[string]interface{}{
		"hierarchy": hierarchy,
		"level":     level,
		"offset":    offset,
	}
	if count > 0 {
		body["count"] = count
	}
	resp, err := s.send("load", body)
	if err != nil {
		return Result{}, err
	}

	items, err := model.ParseBrowseItems(asSlice(resp.Body["items"]))
	if err != nil {
		return Result{}, err
	}
	list, err := model.ParseBrowseList(resp.Body)
	if err != nil {
		return Result{}, err
	}
	if list != nil {
		s.mu.Lock()
		s.currentLevel = list.Level
		s.currentList = list
		s.mu.Unlock()
	}
	return Result{List: list, Items: items}, nil
}

// Hierarchy returns the currently browsed hierarchy name.
func (s *Service) Hierarchy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentHierarchy
}

// Level returns the current browse stack depth.
func (s *Service) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLevel
}

// List returns the most recently seen list metadata, or nil if the
// current level is not a list.
func (s *Service) List() *model.BrowseList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentList
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
