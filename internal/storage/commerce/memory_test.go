package commerce

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "一加15", NormalizeKeyword(" 一加 15 "))
	assert.Equal(t, "iphone16pro", NormalizeKeyword("iPhone\t16  Pro"))
	assert.Equal(t, "", NormalizeKeyword("   "))
}

func TestMemoryStore_SearchProductsIgnoresSpacesAndInactive(t *testing.T) {
	s := NewMemoryStore(&Seed{Products: []*Product{
		{ProductID: "P001", Title: "一加15", IsActive: true},
		{ProductID: "P002", Title: "一加 15 Pro", IsActive: true},
		{ProductID: "P003", Title: "一加15 旧款", IsActive: false},
		{ProductID: "P004", Title: "小米手环", IsActive: true},
	}})
	ctx := context.Background()

	got, err := s.SearchProducts(ctx, "一加 15", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P002", got[0].ProductID, "newest first")
	assert.Equal(t, "P001", got[1].ProductID)

	limited, err := s.SearchProducts(ctx, "一加15", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.SearchProducts(ctx, "华为", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_GetOrderReturnsCopy(t *testing.T) {
	s := NewMemoryStore(nil)
	s.PutOrder(&Order{OrderNo: "20251223120000ABCDEF", Status: StatusPaid, Items: []OrderItem{{ProductID: "P001", Qty: 1}}})
	ctx := context.Background()

	o, err := s.GetOrder(ctx, " 20251223120000ABCDEF ")
	require.NoError(t, err)
	require.NotNil(t, o)
	o.Status = StatusRefunded
	o.Items[0].Qty = 9

	again, err := s.GetOrder(ctx, "20251223120000ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, again.Status)
	assert.Equal(t, 1, again.Items[0].Qty)

	missing, err := s.GetOrder(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_AfterSalesAndTicketsNewestFirst(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.CreateAfterSale(ctx, &AfterSale{AfterSaleID: "AS1", CreatedAt: now}))
	require.NoError(t, s.CreateAfterSale(ctx, &AfterSale{AfterSaleID: "AS2", CreatedAt: now}))
	require.NoError(t, s.CreateTicket(ctx, &Ticket{TicketID: "TK1"}))

	list, err := s.ListAfterSales(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AS2", list[0].AfterSaleID)

	tickets, err := s.ListTickets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "TK1", tickets[0].TicketID)
}

func TestNewStore_MemoryWithSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"shops": [{"shop_id": "S1", "shop_name": "数码旗舰店", "persona": "热情专业"}],
		"products": [{"product_id": "P001", "shop_id": "S1", "title": "一加15", "price": 3999, "is_active": true}],
		"orders": [{"order_no": "20251223120000ABCDEF", "status": "DELIVERED", "receiver": "张三", "phone_tail": "1234",
			"created_at": "2025-12-23T12:00:00+08:00", "items": [{"product_id": "P001", "title": "一加15", "price": 3999, "qty": 1}]}]
	}`), 0644))

	s, err := NewStore(context.Background(), Config{Type: "memory", SeedFile: path})
	require.NoError(t, err)
	defer s.Close()

	sh, err := s.GetShop(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "数码旗舰店", sh.ShopName)

	o, err := s.GetOrder(context.Background(), "20251223120000ABCDEF")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "张三", o.Receiver)
	assert.Len(t, o.Items, 1)
}

func TestNewStore_Errors(t *testing.T) {
	_, err := NewStore(context.Background(), Config{Type: "mysql"})
	assert.Error(t, err)
	_, err = NewStore(context.Background(), Config{Type: "postgres"})
	assert.Error(t, err)
	_, err = NewStore(context.Background(), Config{SeedFile: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}
