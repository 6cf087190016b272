package chat

// ストア標準の定型応答セット。
func Default() *Bot {
	return New(defaultIntents, defaultFallback, 1)
}

var defaultFallback = []string{
	"I'm sorry, I didn't quite get that. Could you rephrase?",
	"I can help with orders, shipping, returns and payments. What do you need?",
}

var defaultIntents = []Intent{
	{
		Tag:      "greeting",
		Keywords: []string{"hello", "hi", "hey", "morning", "evening"},
		Responses: []string{
			"Hi there! How can I help you today?",
			"Hello! What can I do for you?",
		},
	},
	{
		Tag:      "goodbye",
		Keywords: []string{"bye", "goodbye", "later", "thanks"},
		Responses: []string{
			"Thanks for visiting Shopifly. Have a great day!",
			"Goodbye! Come back soon.",
		},
	},
	{
		Tag:      "shipping",
		Keywords: []string{"shipping", "ship", "deliver", "delivery", "arrive"},
		Responses: []string{
			"Standard shipping takes 3-5 business days. You can track your order from the orders page.",
		},
	},
	{
		Tag:      "shipping_cost",
		Keywords: []string{"shipping", "cost", "fee", "free"},
		Responses: []string{
			"Shipping is free for orders over $50. Below that a flat $5 fee applies.",
		},
	},
	{
		Tag:      "returns",
		Keywords: []string{"return", "refund", "exchange", "money", "back"},
		Responses: []string{
			"You can return unused items within 30 days of delivery for a full refund.",
		},
	},
	{
		Tag:      "payment",
		Keywords: []string{"payment", "pay", "card", "credit", "visa", "mastercard"},
		Responses: []string{
			"We accept all major credit cards and debit cards at checkout.",
		},
	},
	{
		Tag:      "order_status",
		Keywords: []string{"order", "status", "track", "tracking", "where"},
		Responses: []string{
			"You can check your order status on the orders page. Once shipped, the status changes to SHIPPED.",
		},
	},
	{
		Tag:      "cancel_order",
		Keywords: []string{"cancel", "cancellation", "order"},
		Responses: []string{
			"Orders can be cancelled while they are still pending or processing. Contact support with your order id.",
		},
	},
	{
		Tag:      "stock",
		Keywords: []string{"stock", "available", "availability", "restock", "sold"},
		Responses: []string{
			"If an item is out of stock, add it to your favorites and we'll show it as soon as it's back.",
		},
	},
	{
		Tag:      "discount",
		Keywords: []string{"discount", "sale", "coupon", "promo", "offer"},
		Responses: []string{
			"Discounted prices are already shown on the product page. We don't support coupon codes yet.",
		},
	},
	{
		Tag:      "account",
		Keywords: []string{"account", "register", "signup", "login", "password"},
		Responses: []string{
			"You can create an account or log in from the account page. Passwords must be at least 12 characters.",
		},
	},
	{
		Tag:      "invoice",
		Keywords: []string{"invoice", "receipt", "pdf", "bill"},
		Responses: []string{
			"A PDF invoice is available for every order from the order detail page.",
		},
	},
	{
		Tag:      "contact",
		Keywords: []string{"contact", "human", "support", "agent", "phone", "email"},
		Responses: []string{
			"You can reach our support team at support@shopifly.example. We reply within one business day.",
		},
	},
	{
		Tag:      "hours",
		Keywords: []string{"hours", "open", "time", "weekend"},
		Responses: []string{
			"Our online store is open 24/7. Support is available on weekdays, 9am to 6pm.",
		},
	},
	{
		Tag:      "favorites",
		Keywords: []string{"favorite", "favorites", "wishlist", "save"},
		Responses: []string{
			"Tap the heart on any product to add it to your favorites.",
		},
	},
}
