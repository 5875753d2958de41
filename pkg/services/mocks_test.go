package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ekaya-inc/schemaforge/pkg/adapters/catalog"
	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// fakeConnection serves canned describe results. Objects listed in block
// wait for the request context to end before returning.
type fakeConnection struct {
	orgID     string
	global    []models.GlobalObject
	describes map[string]*models.ObjectDescribe
	errs      map[string]error
	block     map[string]bool
	limit     *models.LimitInfo

	mu     sync.Mutex
	calls  []string
	closed bool
}

func newFakeConnection(orgID string, describes ...*models.ObjectDescribe) *fakeConnection {
	c := &fakeConnection{
		orgID:     orgID,
		describes: make(map[string]*models.ObjectDescribe),
		errs:      make(map[string]error),
		block:     make(map[string]bool),
		limit:     &models.LimitInfo{Used: 12, Max: 15000},
	}
	for _, d := range describes {
		c.describes[d.Name] = d
		c.global = append(c.global, models.GlobalObject{Name: d.Name, Label: d.Label, Createable: true})
	}
	return c
}

func (c *fakeConnection) OrgID() string { return c.orgID }

func (c *fakeConnection) Info() models.OrgConnection {
	return models.OrgConnection{OrgID: c.orgID, Adapter: "fake", LimitInfo: c.limit}
}

func (c *fakeConnection) DescribeGlobal(ctx context.Context) ([]models.GlobalObject, error) {
	if err := c.errs[""]; err != nil {
		return nil, err
	}
	return c.global, nil
}

func (c *fakeConnection) Describe(ctx context.Context, objectName string) (*models.ObjectDescribe, error) {
	c.mu.Lock()
	c.calls = append(c.calls, objectName)
	c.mu.Unlock()

	if c.block[objectName] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := c.errs[objectName]; err != nil {
		return nil, err
	}
	d, ok := c.describes[objectName]
	if !ok {
		return nil, fmt.Errorf("describe %s: %w", objectName, apperrors.ErrNotFound)
	}
	return d, nil
}

func (c *fakeConnection) LimitInfo() *models.LimitInfo { return c.limit }

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConnection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var _ catalog.Connection = (*fakeConnection)(nil)

// fakeFactory hands out pre-built connections keyed by the "org" config key.
type fakeFactory struct {
	conns map[string]*fakeConnection
}

func (f *fakeFactory) NewConnection(ctx context.Context, adapterType string, config map[string]any) (catalog.Connection, error) {
	if adapterType != "fake" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAdapter, adapterType)
	}
	org, _ := config["org"].(string)
	conn, ok := f.conns[org]
	if !ok {
		return nil, fmt.Errorf("login failed for %s: password=hunter2", org)
	}
	return conn, nil
}

func (f *fakeFactory) ListTypes() []catalog.AdapterInfo {
	return []catalog.AdapterInfo{{Type: "fake", DisplayName: "Fake"}}
}

// recordingNotifier keeps every published message.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []models.LogMessage
}

func (n *recordingNotifier) Publish(msg models.LogMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) bySeverity(sev models.Severity) []models.LogMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.LogMessage
	for _, m := range n.messages {
		if m.Severity == sev {
			out = append(out, m)
		}
	}
	return out
}

func accountDescribe() *models.ObjectDescribe {
	return &models.ObjectDescribe{
		Name:  "Account",
		Label: "Account",
		Fields: []models.FieldDescriptor{
			{Name: "Id", Type: "id", Length: 18},
			{Name: "Name", Type: "string", Length: 255, Createable: true, Updateable: true},
			{Name: "Industry", Type: "picklist", Length: 255, Createable: true, Updateable: true, RestrictedPicklist: true,
				PicklistValues: []models.PicklistValue{{Value: "Banking", Active: true}, {Value: "Energy", Active: true}}},
		},
	}
}

func contactDescribe() *models.ObjectDescribe {
	rel := "Cases"
	return &models.ObjectDescribe{
		Name:  "Contact",
		Label: "Contact",
		Fields: []models.FieldDescriptor{
			{Name: "Id", Type: "id", Length: 18},
			{Name: "FirstName", Type: "string", Length: 40, Createable: true, Updateable: true},
			{Name: "AccountId", Type: "reference", Length: 18, Createable: true, Updateable: true, ReferenceTo: []string{"Account"}},
			{Name: "DoNotCall", Type: "boolean", Createable: true, Updateable: true},
		},
		ChildRelationships: []models.ChildRelationship{
			{ChildObject: "Case", Field: "ContactId", RelationshipName: &rel},
		},
	}
}

func opportunityDescribe() *models.ObjectDescribe {
	return &models.ObjectDescribe{
		Name: "Opportunity",
		Fields: []models.FieldDescriptor{
			{Name: "Id", Type: "id", Length: 18},
			{Name: "Amount", Type: "currency", Precision: 18, Scale: 2, Createable: true, Updateable: true},
		},
	}
}

func defaultPrefs() *models.Preferences {
	p := models.NewDefaultPreferences()
	return &p
}
