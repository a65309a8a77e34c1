package enhance

// fillerLexicon lists verbal tics removed from transcripts. Matching is
// case-insensitive and whole-word only; multi-word phrases are listed
// longest-first so they win over their components. "like" is deliberately
// absent: it is too often load-bearing to strip mechanically.
var fillerLexicon = []string{
	"you know",
	"i mean",
	"sort of",
	"kind of",
	"umm",
	"uhh",
	"um",
	"uh",
	"erm",
	"hmm",
	"ah",
	"er",
}

// profanityMask replaces matched terms; the mask is fixed so downstream
// consumers can rely on it.
const profanityMask = "[censored]"

var profanityLexicon = []string{
	"fucking",
	"fucked",
	"fuck",
	"shitty",
	"shit",
	"bitch",
	"asshole",
	"bastard",
	"goddamn",
	"damn",
	"crap",
}
