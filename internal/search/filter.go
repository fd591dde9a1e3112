// Package search фильтрует список заказов по строке поиска из админки.
//
// Запрос разбирается двумя независимыми способами: цифры из запроса
// сравниваются с ID заказа и телефоном, нормализованный текст ищется в
// имени, статусе и названиях тортов. Совпадение по любому признаку
// включает заказ в выдачу, порядок заказов сохраняется.
package search

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// Смещение между блоками хираганы и катаканы.
const kanaOffset = 'ァ' - 'ぁ'

// Query — разобранная строка поиска.
type Query struct {
	Raw    string
	Digits string
	Text   string
}

// ParseQuery извлекает из строки цифровой и текстовый ключи.
func ParseQuery(raw string) Query {
	return Query{
		Raw:    raw,
		Digits: Digits(raw),
		Text:   Normalize(raw),
	}
}

// Empty сообщает, что после обрезки пробелов запрос пуст.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Raw) == ""
}

// Normalize приводит текст к ключу поиска: NFKC, хирагана в катакану,
// без пробелов, в нижнем регистре. Применяется одинаково к запросу и к данным.
func Normalize(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(toKatakana(r)))
	}
	return b.String()
}

// Digits возвращает все десятичные цифры строки. Полноширинные цифры
// учитываются после NFKC.
func Digits(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toKatakana(r rune) rune {
	switch {
	case r >= 'ぁ' && r <= 'ゖ':
		return r + kanaOffset
	case r == 'ゝ' || r == 'ゞ':
		return r + kanaOffset
	default:
		return r
	}
}

// Filter возвращает заказы, подходящие под rawQuery. Пустой запрос
// возвращает исходный срез без изменений.
//
// Если заказ найден только по названию торта, в результат попадает копия
// заказа, где Cakes содержит лишь совпавшие позиции.
func Filter(orders []domain.Order, rawQuery string) []domain.Order {
	q := ParseQuery(rawQuery)
	if q.Empty() {
		return orders
	}

	id, idErr := parseID(q.Digits)

	result := make([]domain.Order, 0)
	for _, order := range orders {
		if q.Digits != "" {
			if idErr == nil && order.ID == id {
				result = append(result, order)
				continue
			}
			if strings.Contains(Digits(order.Tel), q.Digits) {
				result = append(result, order)
				continue
			}
		}

		if q.Text == "" {
			continue
		}
		if matchesName(order, q.Text) || strings.Contains(Normalize(order.Status.Label()), q.Text) {
			result = append(result, order)
			continue
		}
		if cakes := matchingCakes(order.Cakes, q.Text); len(cakes) > 0 {
			narrowed := order
			narrowed.Cakes = cakes
			result = append(result, narrowed)
		}
	}
	return result
}

func parseID(digits string) (int64, error) {
	if digits == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(digits, 10, 64)
}

func matchesName(order domain.Order, text string) bool {
	first := Normalize(order.FirstName)
	last := Normalize(order.LastName)

	candidates := []string{first, last, first + last, last + first}
	for _, c := range candidates {
		if c != "" && strings.Contains(c, text) {
			return true
		}
	}
	return false
}

func matchingCakes(cakes []domain.CakeLine, text string) []domain.CakeLine {
	var out []domain.CakeLine
	for _, cake := range cakes {
		if strings.Contains(Normalize(cake.Name), text) {
			out = append(out, cake)
		}
	}
	return out
}
