package normalizer

// portugueseStopwords is the fixed stopword set used during normalization.
// The list follows the standard NLTK Portuguese corpus.
var portugueseStopwords = []string{
	"a", "à", "ao", "aos", "aquela", "aquelas", "aquele", "aqueles", "aquilo",
	"as", "às", "até", "com", "como", "da", "das", "de", "dela", "delas",
	"dele", "deles", "depois", "do", "dos", "e", "é", "ela", "elas", "ele",
	"eles", "em", "entre", "era", "eram", "éramos", "essa", "essas", "esse",
	"esses", "esta", "está", "estamos", "estão", "estar", "estas", "estava",
	"estavam", "estávamos", "este", "esteja", "estejam", "estejamos", "estes",
	"esteve", "estive", "estivemos", "estiver", "estivera", "estiveram",
	"estivéramos", "estiverem", "estivermos", "estivesse", "estivessem",
	"estivéssemos", "estou", "eu", "foi", "fomos", "for", "fora", "foram",
	"fôramos", "forem", "formos", "fosse", "fossem", "fôssemos", "fui", "há",
	"haja", "hajam", "hajamos", "hão", "havemos", "haver", "hei", "houve",
	"houvemos", "houver", "houvera", "houverá", "houveram", "houvéramos",
	"houverão", "houverei", "houverem", "houveremos", "houveria", "houveriam",
	"houveríamos", "houvermos", "houvesse", "houvessem", "houvéssemos",
	"isso", "isto", "já", "lhe", "lhes", "mais", "mas", "me", "mesmo", "meu",
	"meus", "minha", "minhas", "muito", "na", "não", "nas", "nem", "no",
	"nos", "nós", "nossa", "nossas", "nosso", "nossos", "num", "numa", "o",
	"os", "ou", "para", "pela", "pelas", "pelo", "pelos", "por", "qual",
	"quando", "que", "quem", "são", "se", "seja", "sejam", "sejamos", "sem",
	"ser", "será", "serão", "serei", "seremos", "seria", "seriam", "seríamos",
	"seu", "seus", "só", "somos", "sou", "sua", "suas", "também", "te", "tem",
	"tém", "temos", "tenha", "tenham", "tenhamos", "tenho", "terá", "terão",
	"terei", "teremos", "teria", "teriam", "teríamos", "teu", "teus", "teve",
	"tinha", "tinham", "tínhamos", "tive", "tivemos", "tiver", "tivera",
	"tiveram", "tivéramos", "tiverem", "tivermos", "tivesse", "tivessem",
	"tivéssemos", "tu", "tua", "tuas", "um", "uma", "você", "vocês", "vos",
}

// suffixRule reduces an inflected token to a base form. Rules are applied
// longest suffix first; MinLen guards short words that merely end in the
// suffix.
type suffixRule struct {
	Suffix      string
	Replacement string
	MinLen      int
}

// portugueseSuffixes is a conservative plural/adverb reduction table.
var portugueseSuffixes = []suffixRule{
	{Suffix: "amente", Replacement: "", MinLen: 9},
	{Suffix: "mente", Replacement: "", MinLen: 8},
	{Suffix: "ções", Replacement: "ção", MinLen: 6},
	{Suffix: "sões", Replacement: "são", MinLen: 6},
	{Suffix: "ões", Replacement: "ão", MinLen: 5},
	{Suffix: "ães", Replacement: "ão", MinLen: 5},
	{Suffix: "ais", Replacement: "al", MinLen: 5},
	{Suffix: "éis", Replacement: "el", MinLen: 5},
	{Suffix: "óis", Replacement: "ol", MinLen: 5},
	{Suffix: "res", Replacement: "r", MinLen: 6},
	{Suffix: "zes", Replacement: "z", MinLen: 5},
	{Suffix: "ses", Replacement: "s", MinLen: 5},
	{Suffix: "s", Replacement: "", MinLen: 4},
}
