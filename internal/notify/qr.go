package notify

import (
	"context"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

const defaultQRSize = 256

// QRContent возвращает строку, которую кодирует QR-код заказа.
// На кассе её читает сканер и открывает заказ по ID.
func QRContent(orderID int64) string {
	return fmt.Sprintf("ORDER:%d", orderID)
}

// PNGGenerator рисует QR-коды в PNG через go-qrcode.
type PNGGenerator struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewPNGGenerator создаёт генератор. size <= 0 заменяется размером по умолчанию.
func NewPNGGenerator(size int) *PNGGenerator {
	if size <= 0 {
		size = defaultQRSize
	}
	return &PNGGenerator{size: size, level: qrcode.Medium}
}

// Generate кодирует content в PNG.
func (g *PNGGenerator) Generate(ctx context.Context, content string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(content, g.level, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

var _ domain.QRGenerator = (*PNGGenerator)(nil)
