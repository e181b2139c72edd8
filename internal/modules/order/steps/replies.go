package steps

import (
	"encoding/json"
	"fmt"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

// nextFieldPrompt asks for the first missing required field, in asking order.
func nextFieldPrompt(fields types.OrderFields) string {
	missing := fields.Missing()
	if len(missing) == 0 {
		return "Tout est bon, je vérifie votre commande 🙏"
	}
	switch missing[0] {
	case types.FieldPhoto:
		return "Envoyez-nous la photo de l'article souhaité 📷"
	case types.FieldPayment:
		return "Envoyez la capture d'écran du paiement (Wave ou Orange Money) svp."
	case types.FieldZone:
		return "Dans quelle commune êtes-vous pour la livraison ?"
	case types.FieldPhone:
		if fields.Phone.Collected && !fields.Phone.Valid {
			return phoneErrorReply(fields.Phone.Error, fields.Phone.Number)
		}
		return "Quel est votre numéro de téléphone (10 chiffres) ?"
	default:
		return "Dans quelle commune êtes-vous pour la livraison ?"
	}
}

// deterministicReply renders the templated answer for a fired trigger and
// steers toward the next missing field.
func deterministicReply(trigger TriggerResult, fields types.OrderFields) string {
	switch trigger.Category {
	case TriggerPhoto:
		return photoReply(trigger.Photo, fields)
	case TriggerPayment:
		return paymentReply(trigger.Payment, fields)
	case TriggerZone:
		return zoneReply(trigger.Zone, fields)
	case TriggerPhoneIntermediate, TriggerPhoneFinal:
		return phoneReply(trigger.Phone, fields)
	case TriggerConfirmation:
		return nextFieldPrompt(fields)
	default:
		return nextFieldPrompt(fields)
	}
}

func photoReply(p *PhotoPayload, fields types.OrderFields) string {
	if p == nil {
		return nextFieldPrompt(fields)
	}
	switch p.ErrorSubtype {
	case types.PhotoErrTooSmall:
		return "La photo est trop petite pour être reconnue. Renvoyez-la en taille réelle svp 📷"
	case types.PhotoErrUnsupportedFormat:
		return "Ce format d'image n'est pas pris en charge. Envoyez une photo JPEG ou PNG svp."
	case types.PhotoErrAmbiguousCaption:
		return "Je n'ai pas bien reconnu l'article sur la photo. Pouvez-vous renvoyer une photo plus nette de l'article ?"
	}
	if p.Product != "" {
		return fmt.Sprintf("Photo bien reçue (%s) ✅. %s", p.Product, nextFieldPrompt(fields))
	}
	return fmt.Sprintf("Photo bien reçue ✅. %s", nextFieldPrompt(fields))
}

func paymentReply(p *PaymentPayload, fields types.OrderFields) string {
	if p == nil {
		return nextFieldPrompt(fields)
	}
	switch p.ErrorSubtype {
	case types.PaymentErrEmpty:
		return "La capture semble vide. Renvoyez la capture d'écran complète du paiement svp."
	case types.PaymentErrUnreadable:
		return "Je n'arrive pas à lire le montant sur la capture. Renvoyez une capture nette du paiement svp."
	case types.PaymentErrMissingRecipient:
		return "Je vois le montant mais pas le numéro du bénéficiaire. Renvoyez la capture complète (avec le destinataire) svp."
	}
	return fmt.Sprintf("Paiement de %s bien reçu ✅. %s", paymentDisplay(p.Amount, p.Currency), nextFieldPrompt(fields))
}

func zoneReply(z *ZonePayload, fields types.OrderFields) string {
	if z == nil {
		return nextFieldPrompt(fields)
	}
	if z.Category == types.ZoneRemote {
		return fmt.Sprintf(
			"Pour %s, un agent vous contactera pour le tarif d'expédition (%s). %s",
			z.Name, z.DeliveryEstimate, nextFieldPrompt(fields),
		)
	}
	return fmt.Sprintf(
		"C'est noté pour %s : livraison %d FCFA (%s). %s",
		z.Name, z.Cost, z.DeliveryEstimate, nextFieldPrompt(fields),
	)
}

func phoneReply(p *PhonePayload, fields types.OrderFields) string {
	if p == nil {
		return nextFieldPrompt(fields)
	}
	if !p.Valid {
		return phoneErrorReply(p.ErrorSubtype, p.Number)
	}
	return fmt.Sprintf("Numéro %s bien noté ✅. %s", p.Number, nextFieldPrompt(fields))
}

func phoneErrorReply(subtype types.PhoneErrorSubtype, number string) string {
	switch subtype {
	case types.PhoneErrTooShort:
		return fmt.Sprintf("Le numéro %s semble incomplet, il faut 10 chiffres. Pouvez-vous le vérifier ?", number)
	case types.PhoneErrTooLong:
		return fmt.Sprintf("Le numéro %s comporte trop de chiffres, il en faut 10. Pouvez-vous le vérifier ?", number)
	case types.PhoneErrWrongPrefix:
		return fmt.Sprintf("Le numéro %s ne ressemble pas à un numéro ivoirien (01, 05, 07…). Pouvez-vous le vérifier ?", number)
	default:
		return "Quel est votre numéro de téléphone (10 chiffres) ?"
	}
}

// deterministicRecap is the completion reply used when the language model is
// unavailable. The snapshot is the sole source of truth for its content.
func deterministicRecap(s *SnapshotData) string {
	article := s.ProductName
	if article == "" {
		article = s.PhotoDescription
	}
	delivery := fmt.Sprintf("%s (%d FCFA, %s)", s.ZoneName, s.ZoneCost, s.DeliveryEstimate)
	if s.ZoneCategory == types.ZoneRemote {
		delivery = fmt.Sprintf("%s (tarif communiqué par un agent, %s)", s.ZoneName, s.DeliveryEstimate)
	}
	return fmt.Sprintf(
		"Commande confirmée ✅\n- Article : %s\n- Paiement : %s\n- Livraison : %s\n- Contact : %s\nMerci pour votre confiance 🙏",
		article,
		paymentDisplay(s.Amount, s.Currency),
		delivery,
		s.Phone,
	)
}

func snapshotJSON(s *SnapshotData) string {
	raw, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
