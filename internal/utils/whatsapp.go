package utils

import (
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me deep link for the given phone number with an
// optional pre-filled message. The number is reduced to its digits; a leading
// plus is tolerated but wa.me wants bare digits.
func WhatsAppLink(phone, message string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	link := "https://wa.me/" + digits.String()
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

// AgentWhatsAppLink builds a contact link to an agent about a listing.
func AgentWhatsAppLink(agentPhone, listingTitle string) string {
	message := "Hi, I'm interested in your property"
	if listingTitle != "" {
		message = "Hi, I'm interested in your property: " + listingTitle
	}
	return WhatsAppLink(agentPhone, message)
}

// BuyerWhatsAppLink builds a contact link to a buyer about an application.
func BuyerWhatsAppLink(buyerPhone, applicationID string) string {
	message := "Hi, regarding your application"
	if applicationID != "" {
		message = "Hi, regarding application " + applicationID
	}
	return WhatsAppLink(buyerPhone, message)
}
