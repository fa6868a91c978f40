package widget

import (
	"fmt"
	"time"

	"github.com/fjod/order-widget/internal/domain"
)

// NoticeKey identifies a user-visible message.
type NoticeKey string

const (
	NoticeQuantityLimit  NoticeKey = "quantity_limit"
	NoticeEmptyCart      NoticeKey = "empty_cart"
	NoticeRetryTooSoon   NoticeKey = "retry_too_soon"
	NoticeTooManyItems   NoticeKey = "too_many_items"
	NoticePayloadTooBig  NoticeKey = "payload_too_large"
	NoticeInFlight       NoticeKey = "in_flight"
	NoticeOrderSent      NoticeKey = "order_sent"
	NoticeDeliveryFailed NoticeKey = "delivery_failed"
	NoticeUnreachable    NoticeKey = "unreachable"
	NoticeUnavailable    NoticeKey = "unavailable"
	NoticeInternal       NoticeKey = "internal_error"
)

// DefaultNoticeDuration is how long a notice stays on screen.
const DefaultNoticeDuration = 1800 * time.Millisecond

// Notice is a transient message for the user.
type Notice struct {
	Key        NoticeKey `json:"key"`
	Text       string    `json:"text"`
	DurationMS int64     `json:"duration_ms"`
}

var noticeTexts = map[NoticeKey]domain.LocalizedText{
	NoticeQuantityLimit:  {ES: "Límite de %d unidades por artículo", EN: "Limit of %d units per item"},
	NoticeEmptyCart:      {ES: "Carrito vacío", EN: "Cart is empty"},
	NoticeRetryTooSoon:   {ES: "Espera un momento antes de reenviar.", EN: "Please wait a moment before resending."},
	NoticeTooManyItems:   {ES: "Demasiados artículos en un solo pedido", EN: "Too many items in a single order"},
	NoticePayloadTooBig:  {ES: "El pedido excede el tamaño permitido", EN: "The order exceeds the allowed size"},
	NoticeInFlight:       {ES: "El pedido se está enviando…", EN: "The order is being sent…"},
	NoticeOrderSent:      {ES: "¡Pedido enviado con éxito!", EN: "Order sent successfully!"},
	NoticeDeliveryFailed: {ES: "Error al enviar: %s", EN: "Sending failed: %s"},
	NoticeUnreachable:    {ES: "No se pudo conectar: %s", EN: "Could not connect: %s"},
	NoticeUnavailable:    {ES: "Servicio no disponible, intenta más tarde.", EN: "Service unavailable, please try again later."},
	NoticeInternal:       {ES: "No se pudo procesar el pedido", EN: "The order could not be processed"},
}

var noServerAnswer = domain.LocalizedText{ES: "Sin respuesta del servidor", EN: "No response from server"}

func newNotice(key NoticeKey, lang domain.Language, args ...any) *Notice {
	text := noticeTexts[key].In(lang)
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	return &Notice{
		Key:        key,
		Text:       text,
		DurationMS: DefaultNoticeDuration.Milliseconds(),
	}
}
