// Package chatbot answers farming questions from a fixed keyword table.
package chatbot

import (
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

const defaultReply = "I'm your farming assistant! 🌾 I can help with: fertilizers, pest control, crop prices, planting seasons, soil health, irrigation, and government schemes. What would you like to know?"

type matcher func(msg string, words map[string]bool) bool

type rule struct {
	name  string
	match matcher
	reply string
}

// contains matches when msg contains one of the substrings.
func contains(subs ...string) matcher {
	return func(msg string, _ map[string]bool) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

// word matches whole words only, for short tokens like "hi".
func word(ws ...string) matcher {
	return func(_ string, words map[string]bool) bool {
		for _, w := range ws {
			if words[w] {
				return true
			}
		}
		return false
	}
}

func all(ms ...matcher) matcher {
	return func(msg string, words map[string]bool) bool {
		for _, m := range ms {
			if !m(msg, words) {
				return false
			}
		}
		return true
	}
}

func either(ms ...matcher) matcher {
	return func(msg string, words map[string]bool) bool {
		for _, m := range ms {
			if m(msg, words) {
				return true
			}
		}
		return false
	}
}

// Order matters: the first matching rule wins.
var rules = []rule{
	{"fertilizer:wheat", all(contains("fertilizer"), contains("wheat", "gehun")),
		"🌾 For wheat cultivation, I recommend:\n• Basal dose: 60 kg Urea + 50 kg DAP per acre\n• Top dressing: 40 kg Urea after first irrigation (21 days)\n• Use NPK 12:32:16 for better results\n• Apply zinc sulphate if soil is deficient\n📍 Best time: At sowing and after first irrigation"},
	{"fertilizer:rice", all(contains("fertilizer"), contains("rice", "dhan", "paddy")),
		"🌱 For rice/paddy cultivation:\n• Basal: 50 kg DAP + 25 kg Urea per acre\n• 1st top dressing: 50 kg Urea at tillering (21 days)\n• 2nd top dressing: 25 kg Urea at panicle initiation (45 days)\n• Use potash (MOP) 15-20 kg for better grain filling\n💧 Apply in standing water for best results"},
	{"fertilizer:vegetable", all(contains("fertilizer"), contains("vegetable", "sabzi")),
		"🥬 For vegetables:\n• Use organic compost (5-10 tons/acre) before planting\n• NPK 19:19:19 at 10 kg per acre every 15 days\n• Foliar spray with micronutrients for better quality\n• Use vermicompost for chemical-free farming"},
	{"fertilizer:cotton", all(contains("fertilizer"), contains("cotton", "kapas")),
		"🧶 For cotton cultivation:\n• Basal: 50 kg DAP + 25 kg MOP per acre\n• Top dressing: 50 kg Urea at 30-40 days\n• Foliar spray: 19:19:19 at flowering\n• Apply boron for better boll formation"},
	{"fertilizer", contains("fertilizer", "khad"),
		"🌾 General fertilizer guidelines:\n• NPK ratio depends on crop & soil type\n• Get soil tested before application (₹50-200)\n• Organic: Compost, vermicompost, FYM\n• Chemical: Urea, DAP, MOP, NPK complexes\n💡 Which crop are you growing? Tell me for specific advice!"},
	{"pest:organic", all(contains("pest"), contains("organic")),
		"🐛 Organic pest control methods:\n• Neem oil spray (5ml/liter water) - weekly\n• Garlic-chili spray - natural repellent\n• Bacillus thuringiensis (BT) - for caterpillars\n• Yellow sticky traps - for whiteflies\n• Encourage natural predators (ladybugs, spiders)\n🌿 Safe for environment & humans!"},
	{"pest", contains("pest", "insect", "keet"),
		"🐜 Common pest solutions:\n• Aphids: Dimethoate 30% EC @ 2ml/liter\n• Whitefly: Imidacloprid 17.8% SL @ 0.5ml/liter\n• Bollworm: Chlorpyriphos @ 2.5ml/liter\n• Stem borer: Cartap hydrochloride 50% SP\n⚠️ Always wear protective gear & follow label instructions"},
	{"prices", contains("price", "mandi", "bhav"),
		"💰 Today's approximate mandi prices (MSP 2024-25):\n• Wheat: ₹2,275/quintal\n• Rice (Paddy): ₹2,300/quintal\n• Cotton: ₹7,020/quintal\n• Maize: ₹2,090/quintal\n• Sugarcane: ₹340/quintal\n📊 Prices vary by region. Check your local mandi or use eNAM app for real-time prices!"},
	{"season:rice", all(contains("season"), contains("rice")),
		"🌱 Rice planting seasons in India:\n• Kharif (Main): June-July (harvest Oct-Nov)\n• Rabi: Nov-Dec (harvest Mar-Apr) - limited regions\n• Summer: Jan-Feb (harvest Apr-May) - with irrigation\n🌧️ Kharif is best with monsoon rains!"},
	{"season:wheat", all(contains("season"), contains("wheat")),
		"🌾 Wheat planting season:\n• Best time: October-November\n• Harvest: March-April\n• Temperature: 10-15°C for sowing\n• Requires: 4-5 irrigations during growth\n❄️ Rabi (winter) crop - needs cool climate"},
	{"season", contains("season", "plant", "sowing"),
		"📅 Indian crop seasons:\n🌧️ Kharif (Monsoon): June-Oct\n   Rice, Cotton, Soybean, Groundnut\n❄️ Rabi (Winter): Oct-Mar\n   Wheat, Mustard, Chickpea, Barley\n☀️ Zaid (Summer): Mar-Jun\n   Vegetables, Watermelon, Cucumber\nTell me your crop for specific dates!"},
	{"soil", all(contains("soil"), contains("improve", "health", "fertility")),
		"🌍 Improve soil health:\n• Add organic matter: Compost, FYM, green manure\n• Crop rotation: Prevents nutrient depletion\n• Cover crops: Legumes add nitrogen\n• Reduce tillage: Preserves soil structure\n• Balance pH: Use lime (acidic) or gypsum (alkaline)\n• Soil testing: Every 2-3 years (₹50-200)\n🔬 Healthy soil = Healthy crops!"},
	{"water", contains("water", "irrigation", "drip"),
		"💧 Water management tips:\n• Drip irrigation: Saves 30-50% water\n• Mulching: Reduces evaporation\n• Sprinkler: Good for vegetables\n• Alternate wetting-drying (AWD): For rice, saves 25% water\n• Rainwater harvesting: Farm ponds, check dams\n💰 Govt subsidy available (40-55%) for micro-irrigation!"},
	{"schemes", contains("scheme", "subsidy", "yojana", "government"),
		"🏛️ Major agricultural schemes:\n• PM-KISAN: ₹6,000/year to all farmers\n• Soil Health Card: Free soil testing\n• Kisan Credit Card (KCC): Low-interest loans\n• PMFBY: Crop insurance at 2% premium\n• Micro-irrigation subsidy: 40-55%\n• PM Fasal Bima Yojana: Comprehensive crop insurance\n📱 Visit pmkisan.gov.in or nearby CSC center"},
	{"weather", contains("weather", "rain", "forecast"),
		"🌤️ For accurate weather forecasts:\n• IMD AgroMet: agromet.imd.gov.in\n• Meghdoot App: 7-day forecast + advisory\n• Damini App: Lightning warnings\n• Kisan Suvidha App: All-in-one info\n☔ Always check before spraying pesticides!"},
	{"greeting", either(contains("hello", "namaste"), word("hi", "hey")),
		"🙏 Namaste! I'm your farming assistant 🌾\n\nI can help you with:\n• Fertilizer recommendations\n• Pest & disease control\n• Crop prices & market info\n• Best planting seasons\n• Soil health improvement\n• Water management\n• Government schemes\n\nWhat would you like to know?"},
	{"thanks", contains("thank", "dhanyavaad", "shukriya"),
		"🙏 You're welcome! Happy farming! 🌾 Feel free to ask anytime. Jai Jawan Jai Kisan! 💚"},
}

type Bot struct {
	log *logrus.Logger
}

func New(logger *logrus.Logger) *Bot {
	return &Bot{log: logger}
}

// Reply never fails; unknown questions get the capabilities message.
func (b *Bot) Reply(message string) string {
	msg := strings.ToLower(message)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for _, r := range rules {
		if r.match(msg, words) {
			b.log.Debugf("Chatbot: %q matched rule %s", message, r.name)
			return r.reply
		}
	}
	b.log.Debugf("Chatbot: no rule matched %q", message)
	return defaultReply
}
