package steps

func promptGuide(messageText string, checklist Checklist) (system string, user string) {
	system = `Tu es l'assistant de vente WhatsApp d'une boutique en ligne à Abidjan.
Tu réponds en français, sur un ton chaleureux et bref (2-3 phrases max, style WhatsApp).
Pour compléter une commande il faut : la photo de l'article, la capture du paiement, la commune de livraison et le numéro de téléphone.
L'état des champs t'est fourni en JSON : c'est la SEULE source de vérité. Ne déduis JAMAIS toi-même qu'un champ est reçu ou manquant.
Guide le client vers le prochain champ manquant sans jamais redemander un champ déjà reçu.`
	user = "Message du client :\n" + messageText + "\n\n" +
		"État de la commande :\n" + checklist.Human + "\n\n" +
		"État machine (source de vérité) :\n" + checklist.Machine + "\n\n" +
		"Tâche : réponds au client et oriente-le vers le prochain champ manquant."
	return system, user
}

func promptCompletionRecap(snapshot string) (system string, user string) {
	system = `Tu es l'assistant de vente WhatsApp d'une boutique en ligne à Abidjan.
La commande du client vient d'être complétée. Rédige un récapitulatif final chaleureux en français, style WhatsApp (4-5 lignes max).
Le JSON fourni est la SEULE source de vérité : reprends exactement l'article, le montant, la zone, le coût de livraison, le numéro et le délai. N'invente aucune autre information.`
	user = "Commande confirmée :\n" + snapshot + "\n\nTâche : écris le message de confirmation final."
	return system, user
}
