package nlp

// Word lists used by the extractor. All keys are lowercase; multi-word keys
// are joined by single spaces with dots removed.

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// orgSuffixes mark the final token of an organization name.
var orgSuffixes = set(
	"inc", "corp", "corporation", "co", "ltd", "llc", "plc", "gmbh", "ag", "sa",
	"group", "holdings", "partners", "capital", "ventures", "labs", "technologies",
	"systems", "bank", "university", "college", "institute", "foundation",
	"association", "agency", "company", "industries", "airlines", "motors",
	"council", "committee", "commission", "ministry", "department", "bureau",
	"hospital", "school", "club", "fund", "trust", "society", "network",
)

// orgHeads open an organization name when followed by "of" or "for"
// ("Bank of America", "Department for Education").
var orgHeads = set(
	"bank", "university", "department", "ministry", "institute", "college",
	"bureau", "office", "board", "house", "school", "federation",
)

var knownOrgs = set(
	"google", "alphabet", "apple", "microsoft", "amazon", "meta", "facebook",
	"openai", "anthropic", "nvidia", "tesla", "ibm", "intel", "amd", "oracle",
	"netflix", "spotify", "uber", "airbnb", "samsung", "sony", "toyota",
	"siemens", "volkswagen", "boeing", "airbus", "walmart", "disney", "reuters",
	"bloomberg", "twitter", "linkedin", "github", "salesforce", "adobe", "cisco",
	"paypal", "visa", "mastercard", "goldman sachs", "jpmorgan", "morgan stanley",
	"nasa", "nato", "fbi", "cia", "fda", "sec", "imf", "who", "un", "eu commission",
	"united nations", "world bank", "european central bank", "federal reserve",
	"congress", "parliament", "senate",
)

// places holds countries, major cities, US states and regions.
var places = set(
	// countries
	"afghanistan", "argentina", "australia", "austria", "belgium", "brazil",
	"canada", "chile", "china", "colombia", "denmark", "egypt", "finland",
	"france", "germany", "greece", "india", "indonesia", "iran", "iraq",
	"ireland", "israel", "italy", "japan", "kenya", "mexico", "morocco",
	"netherlands", "new zealand", "nigeria", "norway", "pakistan", "peru",
	"philippines", "poland", "portugal", "romania", "russia", "saudi arabia",
	"singapore", "south africa", "south korea", "north korea", "spain",
	"sweden", "switzerland", "taiwan", "thailand", "turkey", "ukraine",
	"united kingdom", "united states", "united states of america", "vietnam",
	"us", "usa", "uk", "uae", "eu", "europe", "asia", "africa",
	"latin america", "north america", "south america", "middle east",
	// cities
	"amsterdam", "athens", "bangkok", "barcelona", "beijing", "berlin",
	"boston", "brussels", "buenos aires", "cairo", "chicago", "delhi",
	"dubai", "dublin", "hong kong", "istanbul", "jakarta", "lagos", "lisbon",
	"london", "los angeles", "madrid", "melbourne", "miami", "milan",
	"moscow", "mumbai", "munich", "nairobi", "new york", "new york city",
	"paris", "rome", "san francisco", "sao paulo", "seattle", "seoul",
	"shanghai", "silicon valley", "stockholm", "sydney", "tokyo", "toronto",
	"vancouver", "vienna", "warsaw", "washington", "zurich",
	// states and provinces
	"california", "texas", "florida", "new jersey", "illinois", "ohio",
	"georgia", "virginia", "massachusetts", "oregon", "colorado", "arizona",
	"nevada", "ontario", "quebec", "bavaria", "scotland", "wales", "england",
)

// firstNames is a small list of common given names used to recognize
// people who appear without a title.
var firstNames = set(
	"aaron", "adam", "alex", "alice", "amanda", "amy", "andrew", "angela",
	"anna", "anne", "barbara", "ben", "bill", "bob", "brian", "carlos",
	"carol", "charles", "chris", "christopher", "daniel", "david", "deborah",
	"elizabeth", "elon", "emily", "emma", "eric", "george", "hannah", "helen",
	"jack", "james", "jane", "jason", "jeff", "jennifer", "jessica", "john",
	"joseph", "juan", "julia", "karen", "kevin", "laura", "linda", "lisa",
	"maria", "mark", "mary", "matthew", "michael", "michelle", "mohammed",
	"nancy", "olivia", "patricia", "paul", "peter", "rachel", "richard",
	"robert", "sam", "sarah", "satya", "sophia", "steve", "steven", "susan",
	"sundar", "thomas", "tim", "tom", "william",
)

// titles precede a person's name.
var titles = set(
	"mr", "mrs", "ms", "miss", "dr", "prof", "professor", "sir", "dame",
	"ceo", "cfo", "cto", "president", "senator", "governor", "mayor",
	"minister", "chairman", "chairwoman", "judge", "general", "captain",
)

// stopwords are capitalized words that never start or form an entity on
// their own.
var stopwords = set(
	"a", "an", "the", "this", "that", "these", "those", "i", "we", "you",
	"he", "she", "it", "they", "my", "our", "your", "his", "her", "its",
	"their", "in", "on", "at", "of", "for", "from", "by", "with", "to",
	"and", "or", "but", "if", "when", "while", "after", "before", "as",
	"however", "also", "then", "there", "here", "so", "yet", "still",
	"what", "who", "why", "how", "where", "which", "yes", "no", "not",
	"please", "thanks", "thank", "hello", "hi", "dear", "overall", "meanwhile",
	"today", "yesterday", "tomorrow",
)

// connectors may join capitalized words inside one name.
var connectors = set("of", "and", "&", "de", "for", "the")
