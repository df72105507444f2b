package randomname

var adjectives = []string{
	"brave", "calm", "eager", "fancy", "gentle", "happy", "jolly", "kind",
	"lively", "nice", "proud", "silly", "witty", "zealous", "mighty", "swift",
	"sharp", "bold", "daring", "bright", "creative", "dynamic", "vibrant", "honest",
	"graceful", "focused", "robust", "agile", "clever", "cosmic", "curious", "elegant",
	"fearless", "friendly", "golden", "humble", "luminous", "noble", "playful", "quick",
	"quirky", "serene", "sunny", "tranquil", "valiant", "vivid", "warm", "wise",
}

var nouns = []string{
	"squirrel", "tiger", "eagle", "dolphin", "panther", "lion", "panda", "koala",
	"whale", "shark", "wolf", "falcon", "otter", "rabbit", "bear", "fox",
	"owl", "leopard", "cheetah", "zebra", "giraffe", "raccoon", "badger", "moose",
	"bison", "beaver", "alpaca", "camel", "crane", "deer", "elk", "ferret",
	"gecko", "heron", "kiwi", "lemur", "llama", "lynx", "meerkat", "narwhal",
	"octopus", "orca", "penguin", "puma", "quokka", "raven", "seal", "walrus",
}
