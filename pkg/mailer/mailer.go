package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rifa-digital/backend/config"
)

// PurchaseConfirmation 购买确认邮件数据
type PurchaseConfirmation struct {
	BuyerName  string
	BuyerEmail string
	Numbers    []string
}

// Mailer SMTP 购买确认邮件发送器
// 仅作尽力而为投递：调用方负责异步调度，失败只记日志
type Mailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewMailer 创建 Mailer；未配置 SMTP 主机时返回 nil（调用方按降级处理）
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) *Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("未配置 SMTP 主机，购买确认邮件将不发送")
		return nil
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// SendPurchaseConfirmation 发送购买确认邮件
func (m *Mailer) SendPurchaseConfirmation(ctx context.Context, data *PurchaseConfirmation) error {
	numbers := append([]string(nil), data.Numbers...)
	sort.Slice(numbers, func(i, j int) bool {
		a, _ := strconv.Atoi(numbers[i])
		b, _ := strconv.Atoi(numbers[j])
		return a < b
	})

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&body, "To: %s\r\n", data.BuyerEmail)
	fmt.Fprintf(&body, "Subject: =?UTF-8?B?%s?=\r\n", encodeBase64Subject("¡Compra confirmada! Tus números de la rifa"))
	body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&body, "Hola %s,\n\n", data.BuyerName)
	body.WriteString("Tu compra fue registrada con éxito. Tus números:\n\n")
	for _, n := range numbers {
		fmt.Fprintf(&body, "  • %s\n", n)
	}
	fmt.Fprintf(&body, "\nTotal de números: %d\n\n¡Mucha suerte!\n", len(numbers))

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	// net/smtp 不支持 context 取消，这里借 channel 限制等待时间
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.From, []string{data.BuyerEmail}, []byte(body.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("SMTP 发送失败: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("SMTP 发送超时: %w", ctx.Err())
	}
}

// encodeBase64Subject 按 RFC 2047 编码含非 ASCII 字符的邮件主题
func encodeBase64Subject(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
