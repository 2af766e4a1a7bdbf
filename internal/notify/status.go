package notify

import "github.com/agamariel/storefront/internal/models"

// StatusLabel возвращает название статуса для клиента.
func StatusLabel(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPendingPayment:
		return "Pendente de Pagamento"
	case models.OrderStatusPaymentConfirmed:
		return "Pagamento Confirmado"
	case models.OrderStatusProcessing:
		return "Processando"
	case models.OrderStatusShipped:
		return "Enviado"
	case models.OrderStatusDelivered:
		return "Entregue"
	case models.OrderStatusCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}

// StatusMessage возвращает текст уведомления о новом статусе.
// Для неизвестного статуса используется общий текст.
func StatusMessage(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPendingPayment:
		return "Seu pedido está aguardando a confirmação do pagamento."
	case models.OrderStatusPaymentConfirmed:
		return "Seu pagamento foi confirmado! Estamos preparando seu pedido."
	case models.OrderStatusProcessing:
		return "Seu pedido está sendo processado e será enviado em breve."
	case models.OrderStatusShipped:
		return "Seu pedido foi enviado! Você pode acompanhá-lo com o código de rastreamento."
	case models.OrderStatusDelivered:
		return "Seu pedido foi entregue! Obrigado pela compra."
	case models.OrderStatusCancelled:
		return "Seu pedido foi cancelado."
	default:
		return "Seu pedido foi atualizado."
	}
}
