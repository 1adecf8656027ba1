package templates

import "github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"

// Dictionary holds the labeled text fragments for one locale. Fragments with
// a %s or %d verb are formatted with the matching order field.
type Dictionary struct {
	Titles         map[notification.MessageKind]string
	OrderNumber    string
	Customer       string
	Phone          string
	Store          string
	ItemsHeader    string
	MoreItems      string
	Total          string
	Payment        string
	Address        string
	Instructions   string
	StatusLines    map[notification.OrderStatus]string
	UnknownStatus  string
	Tracking       string
	CustomerClose  string
	BusinessClose  string
	NoRecentOrder  string
	Help           string
	PaymentMethods map[string]string
}

var spanish = Dictionary{
	Titles: map[notification.MessageKind]string{
		notification.KindConfirmation:  "✅ ¡Gracias por tu pedido!",
		notification.KindStatusUpdate:  "🔔 Actualización de tu pedido",
		notification.KindBusinessAlert: "🛎️ ¡Nuevo pedido recibido!",
		notification.KindStatusReply:   "📋 Estado de tu pedido",
	},
	OrderNumber:  "Orden #%s",
	Customer:     "Cliente: %s",
	Phone:        "Teléfono: %s",
	Store:        "Tienda: %s",
	ItemsHeader:  "Productos:",
	MoreItems:    "… y %d producto(s) más",
	Total:        "Total: %s",
	Payment:      "Método de pago: %s",
	Address:      "Dirección de entrega: %s",
	Instructions: "Instrucciones especiales: %s",
	StatusLines: map[notification.OrderStatus]string{
		notification.OrderStatusPending:   "⏳ Recibimos tu pedido y está pendiente de confirmación.",
		notification.OrderStatusConfirmed: "✅ Tu pedido ha sido confirmado.",
		notification.OrderStatusPreparing: "👨‍🍳 Estamos preparando tu pedido.",
		notification.OrderStatusReady:     "🎉 ¡Tu pedido está listo!",
		notification.OrderStatusCompleted: "📦 Tu pedido ha sido entregado. ¡Buen provecho!",
		notification.OrderStatusCancelled: "❌ Tu pedido ha sido cancelado. Si tienes dudas, contacta a la tienda.",
	},
	UnknownStatus: "Estado de tu pedido: %s",
	Tracking:      "Sigue tu pedido: %s",
	CustomerClose: "Responde *pedido* para consultar el estado o *ayuda* si necesitas asistencia.",
	BusinessClose: "Confirma el pedido desde tu panel de administración.",
	NoRecentOrder: "No encontramos pedidos recientes asociados a este número. Si acabas de ordenar, espera unos minutos e inténtalo de nuevo.",
	Help: "👋 ¿En qué podemos ayudarte?\n\n" +
		"• Escribe *pedido* para conocer el estado de tu pedido más reciente.\n" +
		"• Escribe *ayuda* para ver este mensaje.\n\n" +
		"Si necesitas algo más, contacta directamente a la tienda.",
	PaymentMethods: map[string]string{
		"cash":     "Efectivo",
		"card":     "Tarjeta",
		"transfer": "Transferencia",
		"online":   "Pago en línea",
	},
}

var english = Dictionary{
	Titles: map[notification.MessageKind]string{
		notification.KindConfirmation:  "✅ Thank you for your order!",
		notification.KindStatusUpdate:  "🔔 Order update",
		notification.KindBusinessAlert: "🛎️ New order received!",
		notification.KindStatusReply:   "📋 Your order status",
	},
	OrderNumber:  "Order #%s",
	Customer:     "Customer: %s",
	Phone:        "Phone: %s",
	Store:        "Store: %s",
	ItemsHeader:  "Items:",
	MoreItems:    "… and %d more item(s)",
	Total:        "Total: %s",
	Payment:      "Payment method: %s",
	Address:      "Delivery address: %s",
	Instructions: "Special instructions: %s",
	StatusLines: map[notification.OrderStatus]string{
		notification.OrderStatusPending:   "⏳ We received your order and it is awaiting confirmation.",
		notification.OrderStatusConfirmed: "✅ Your order has been confirmed.",
		notification.OrderStatusPreparing: "👨‍🍳 Your order is being prepared.",
		notification.OrderStatusReady:     "🎉 Your order is ready!",
		notification.OrderStatusCompleted: "📦 Your order has been delivered. Enjoy!",
		notification.OrderStatusCancelled: "❌ Your order has been cancelled. If you have questions, please contact the store.",
	},
	UnknownStatus: "Order status: %s",
	Tracking:      "Track your order: %s",
	CustomerClose: "Reply *status* to check on your order or *help* for assistance.",
	BusinessClose: "Confirm the order from your admin dashboard.",
	NoRecentOrder: "We couldn't find a recent order for this number. If you just placed one, please try again in a few minutes.",
	Help: "👋 How can we help?\n\n" +
		"• Send *status* to see the status of your most recent order.\n" +
		"• Send *help* to see this message.\n\n" +
		"For anything else, please contact the store directly.",
	PaymentMethods: map[string]string{
		"cash":     "Cash",
		"card":     "Card",
		"transfer": "Bank transfer",
		"online":   "Online payment",
	},
}

// DefaultDictionaries returns the built-in dictionaries keyed by locale
func DefaultDictionaries() map[notification.Locale]Dictionary {
	return map[notification.Locale]Dictionary{
		notification.LocaleSpanish: spanish,
		notification.LocaleEnglish: english,
	}
}
