package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/search"
)

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:        1,
			FirstName: "さくら",
			LastName:  "山田",
			Tel:       "090-1234-5678",
			Status:    domain.OrderStatusReceived,
			Cakes: []domain.CakeLine{
				{Name: "チーズケーキ", Size: "5号", Amount: 1},
				{Name: "チョコケーキ", Size: "4号", Amount: 1},
			},
		},
		{
			ID:        2,
			FirstName: "Taro",
			LastName:  "Suzuki",
			Tel:       "03 9876 0000",
			Status:    domain.OrderStatusPaidOnline,
			Cakes: []domain.CakeLine{
				{Name: "いちごタルト", Size: "6号", Amount: 2},
			},
		},
		{
			ID:        12,
			FirstName: "ハナコ",
			LastName:  "佐藤",
			Tel:       "080-5555-1111",
			Status:    domain.OrderStatusHandedOver,
			Cakes: []domain.CakeLine{
				{Name: "ショートケーキ", Size: "5号", Amount: 1},
			},
		},
	}
}

func ids(orders []domain.Order) []int64 {
	out := make([]int64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"さくら":         "サクラ",
		"サクラ":         "サクラ",
		"ｻｸﾗ":         "サクラ",
		"がぎぐ":         "ガギグ",
		" Yamada Taro ": "yamadataro",
		"ＡＢＣ":         "abc",
		"チーズ　ケーキ":     "チーズケーキ",
		"ゝ":           "ヽ",
	}
	for in, want := range cases {
		assert.Equal(t, want, search.Normalize(in), "input %q", in)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "09012345678", search.Digits("090-1234-5678"))
	assert.Equal(t, "1234", search.Digits("１２３４"))
	assert.Equal(t, "", search.Digits("さくら"))
	assert.Equal(t, "1", search.Digits("さくら1"))
}

func TestFilter_EmptyQueryReturnsAll(t *testing.T) {
	orders := sampleOrders()

	assert.Equal(t, orders, search.Filter(orders, ""))
	assert.Equal(t, orders, search.Filter(orders, "   "))
	assert.Equal(t, orders, search.Filter(orders, "　"))
}

func TestFilter_PhoneDigits(t *testing.T) {
	got := search.Filter(sampleOrders(), "1234")
	assert.Equal(t, []int64{1}, ids(got))

	got = search.Filter(sampleOrders(), "9876-0000")
	assert.Equal(t, []int64{2}, ids(got))
}

func TestFilter_IDWithLeadingZeros(t *testing.T) {
	got := search.Filter(sampleOrders(), "0001")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	// Совпадение по ID не сужает список тортов.
	assert.Len(t, got[0].Cakes, 2)
}

func TestFilter_IDIsExactNotSubstring(t *testing.T) {
	got := search.Filter(sampleOrders(), "12")
	// id 12 совпадает точно; id 1 подходит по телефону 090-1234-5678.
	assert.Equal(t, []int64{1, 12}, ids(got))

	got = search.Filter(sampleOrders(), "2")
	// id 2 точно, плюс телефоны, содержащие 2.
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestFilter_KanaNormalization(t *testing.T) {
	got := search.Filter(sampleOrders(), "サクラ")
	assert.Equal(t, []int64{1}, ids(got))

	got = search.Filter(sampleOrders(), "はなこ")
	assert.Equal(t, []int64{12}, ids(got))

	got = search.Filter(sampleOrders(), "ｻｸﾗ")
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilter_FullNameAndCase(t *testing.T) {
	got := search.Filter(sampleOrders(), "taro suzuki")
	assert.Equal(t, []int64{2}, ids(got))

	got = search.Filter(sampleOrders(), "SUZUKI TARO")
	assert.Equal(t, []int64{2}, ids(got))

	got = search.Filter(sampleOrders(), "山田さくら")
	assert.Equal(t, []int64{1}, ids(got))
}

func TestFilter_StatusLabel(t *testing.T) {
	got := search.Filter(sampleOrders(), "お渡し")
	assert.Equal(t, []int64{12}, ids(got))

	got = search.Filter(sampleOrders(), "ネット決済")
	assert.Equal(t, []int64{2}, ids(got))
}

func TestFilter_CakeNameNarrowsLines(t *testing.T) {
	orders := sampleOrders()

	got := search.Filter(orders, "チーズ")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	require.Len(t, got[0].Cakes, 1)
	assert.Equal(t, "チーズケーキ", got[0].Cakes[0].Name)

	// Исходный список не изменяется.
	assert.Len(t, orders[0].Cakes, 2)
}

func TestFilter_CakeNameHiraganaQuery(t *testing.T) {
	got := search.Filter(sampleOrders(), "けーき")
	assert.Equal(t, []int64{1, 12}, ids(got))
	assert.Len(t, got[0].Cakes, 2)
	assert.Len(t, got[1].Cakes, 1)

	got = search.Filter(sampleOrders(), "イチゴ")
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestFilter_NameMatchKeepsAllCakes(t *testing.T) {
	orders := []domain.Order{{
		ID:        3,
		FirstName: "チーズ好き",
		Tel:       "000",
		Status:    domain.OrderStatusReceived,
		Cakes: []domain.CakeLine{
			{Name: "チーズケーキ", Amount: 1},
			{Name: "モンブラン", Amount: 1},
		},
	}}

	got := search.Filter(orders, "チーズ")
	require.Len(t, got, 1)
	assert.Len(t, got[0].Cakes, 2)
}

func TestFilter_DigitsAndTextIndependent(t *testing.T) {
	// "さくら1": цифра 1 совпадает с ID первого заказа, текст "サクラ1" ни с чем.
	got := search.Filter(sampleOrders(), "さくら1")
	assert.Equal(t, []int64{1, 12}, ids(got))
}

func TestFilter_NoMatch(t *testing.T) {
	got := search.Filter(sampleOrders(), "モンブラン")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_PreservesOrder(t *testing.T) {
	orders := sampleOrders()
	orders[0], orders[2] = orders[2], orders[0]

	got := search.Filter(orders, "5号")
	// "5号" -> цифра 5: телефоны 090-1234-5678 и 080-5555-1111.
	assert.Equal(t, []int64{12, 1}, ids(got))
}
