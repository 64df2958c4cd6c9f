package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/internal/tool"
)

type fakeResult struct {
	OK bool `json:"ok"`
}

func (r fakeResult) Succeeded() bool { return r.OK }

type fakeTool struct {
	name   tool.Name
	desc   string
	schema tool.Schema
	res    tool.Result
	err    error
	got    tool.Args
}

func (f *fakeTool) Name() tool.Name     { return f.name }
func (f *fakeTool) Description() string { return f.desc }
func (f *fakeTool) Schema() tool.Schema { return f.schema }
func (f *fakeTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	f.got = args
	return f.res, f.err
}

func newFake(name tool.Name) *fakeTool {
	return &fakeTool{
		name: name,
		desc: "查询。输入JSON键：order_id（必填）。",
		schema: tool.Schema{
			Type:       "object",
			Properties: map[string]tool.SchemaProperty{"order_id": {Type: "string"}},
			Required:   []string{"order_id"},
		},
		res: fakeResult{OK: true},
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New(newFake(tool.LookupOrder), newFake(tool.LookupOrder))
	assert.Error(t, err)
}

func TestDispatch_UnknownTool(t *testing.T) {
	r, err := New(newFake(tool.LookupOrder))
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "refund_everything", tool.Args{})
	var unknown *UnknownToolError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "refund_everything", unknown.Name)
	assert.Contains(t, err.Error(), "lookup_order")
}

func TestDispatch_PassesArgsAndResult(t *testing.T) {
	ft := newFake(tool.LookupOrder)
	r, err := New(ft)
	require.NoError(t, err)

	res, err := r.Dispatch(context.Background(), "lookup_order", tool.Args{"order_id": "A1"})
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "A1", ft.got["order_id"])
}

func TestDispatch_BusinessFailureIsNotError(t *testing.T) {
	ft := newFake(tool.LookupOrder)
	ft.res = fakeResult{OK: false}
	r, err := New(ft)
	require.NoError(t, err)

	res, err := r.Dispatch(context.Background(), "lookup_order", tool.Args{})
	require.NoError(t, err)
	assert.False(t, res.Succeeded())
}

func TestDispatch_InfraFailureWrapped(t *testing.T) {
	base := errors.New("connection refused")
	ft := newFake(tool.LookupOrder)
	ft.err = base
	r, err := New(ft)
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "lookup_order", tool.Args{})
	var te *ToolError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, tool.LookupOrder, te.Name)
	assert.True(t, errors.Is(err, base))
}

func TestValidate(t *testing.T) {
	r, err := New(newFake(tool.LookupOrder), newFake(tool.GetTracking))
	require.NoError(t, err)

	assert.NoError(t, r.Validate([]tool.Name{tool.GetTracking, tool.LookupOrder}))
	assert.Error(t, r.Validate([]tool.Name{tool.LookupOrder}), "extra tool")
	assert.Error(t, r.Validate([]tool.Name{tool.LookupOrder, tool.GetTracking, tool.IssueCoupon}), "missing tool")

	undocumented := newFake(tool.LookupOrder)
	undocumented.schema.Properties["phone_tail"] = tool.SchemaProperty{Type: "string"}
	r2, err := New(undocumented)
	require.NoError(t, err)
	assert.Error(t, r2.Validate([]tool.Name{tool.LookupOrder}), "description must mention every argument")
}

func TestCatalog_KeepsRegistrationOrder(t *testing.T) {
	r, err := New(newFake(tool.GetTracking), newFake(tool.LookupOrder))
	require.NoError(t, err)
	cat := r.Catalog()
	require.Len(t, cat, 2)
	assert.Equal(t, tool.GetTracking, cat[0].Name)
	assert.Equal(t, tool.LookupOrder, cat[1].Name)
}
