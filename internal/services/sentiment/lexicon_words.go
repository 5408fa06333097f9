package sentiment

// valence holds word intensities on a -4..+4 scale. The list favours
// general-purpose sentiment words plus vocabulary common in market headlines.
var valence = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "excellent": 2.7, "amazing": 2.8, "awesome": 3.1,
	"best": 3.2, "better": 1.9, "positive": 2.6, "nice": 1.8, "happy": 2.7,
	"love": 3.2, "like": 1.5, "win": 2.8, "wins": 2.7, "winning": 2.4, "won": 2.7,
	"success": 2.7, "successful": 2.8, "strong": 2.3, "stronger": 2.1, "strongest": 2.5,
	"gain": 2.4, "gains": 1.8, "gained": 1.6, "profit": 1.9, "profits": 1.9,
	"profitable": 2.1, "growth": 1.6, "grow": 1.5, "grows": 1.5, "growing": 1.4,
	"surge": 1.9, "surges": 1.9, "surged": 1.9, "soar": 2.1, "soars": 2.1, "soared": 2.1,
	"rally": 1.8, "rallies": 1.8, "rallied": 1.8, "jump": 1.2, "jumps": 1.2, "jumped": 1.2,
	"rise": 1.2, "rises": 1.2, "rising": 1.1, "rose": 1.1, "climb": 1.1, "climbs": 1.1,
	"beat": 1.6, "beats": 1.6, "upgrade": 2.0, "upgrades": 2.0, "upgraded": 2.0,
	"outperform": 2.2, "outperforms": 2.2, "bullish": 2.4, "record": 1.3, "boost": 1.7,
	"boosts": 1.7, "boosted": 1.7, "optimistic": 2.3, "optimism": 2.5, "confident": 2.2,
	"confidence": 2.3, "opportunity": 1.7, "opportunities": 1.7, "innovative": 2.1,
	"innovation": 1.8, "breakthrough": 2.3, "approve": 1.8, "approved": 1.8, "approval": 2.0,
	"recover": 1.6, "recovery": 1.6, "recovers": 1.6, "improve": 1.9, "improved": 2.1,
	"improves": 1.9, "improvement": 2.0, "benefit": 2.0, "benefits": 1.6, "upbeat": 2.2,
	"robust": 1.8, "solid": 1.7, "impressive": 2.3, "exceed": 1.7, "exceeds": 1.7,
	"exceeded": 1.7, "dividend": 0.8, "buy": 0.9, "buyback": 1.0, "expand": 1.3,
	"expands": 1.3, "expansion": 1.3, "partnership": 1.2, "support": 1.7, "safe": 1.9,
	"stable": 1.2, "secure": 1.4, "thrive": 2.5, "thrives": 2.5, "wonderful": 2.7,
	"fantastic": 2.6, "excited": 1.4, "exciting": 2.2, "celebrate": 2.7, "top": 0.8,
	"lead": 0.9, "leading": 1.0, "leader": 1.2, "upside": 1.6, "favorable": 2.1,
	// negative
	"bad": -2.5, "worse": -2.1, "worst": -3.1, "terrible": -2.1, "awful": -2.0,
	"horrible": -2.5, "poor": -2.1, "negative": -2.7, "sad": -2.1, "hate": -2.7,
	"lose": -1.7, "loses": -1.3, "losing": -1.6, "lost": -1.3, "loss": -1.3,
	"losses": -1.7, "fail": -2.5, "fails": -1.8, "failed": -2.3, "failure": -2.3,
	"weak": -1.9, "weaker": -1.9, "weakest": -2.3, "weakness": -1.5, "decline": -1.5,
	"declines": -1.5, "declined": -1.5, "declining": -1.6, "drop": -1.1, "drops": -1.1,
	"dropped": -1.1, "fall": -1.2, "falls": -1.2, "fell": -1.2, "falling": -1.3,
	"plunge": -2.2, "plunges": -2.2, "plunged": -2.2, "crash": -2.6, "crashes": -2.6,
	"crashed": -2.6, "slump": -1.9, "slumps": -1.9, "slumped": -1.9, "tumble": -1.7,
	"tumbles": -1.7, "tumbled": -1.7, "sink": -1.4, "sinks": -1.4, "sank": -1.4,
	"miss": -1.2, "misses": -1.2, "missed": -1.2, "downgrade": -2.0, "downgrades": -2.0,
	"downgraded": -2.0, "underperform": -2.0, "bearish": -2.4, "risk": -1.1,
	"risks": -1.1, "risky": -1.4, "fear": -2.2, "fears": -1.8, "worry": -1.9,
	"worries": -1.6, "worried": -1.2, "concern": -1.3, "concerns": -1.2, "uncertain": -1.2,
	"uncertainty": -1.4, "volatile": -1.1, "volatility": -0.9, "lawsuit": -1.8,
	"lawsuits": -1.8, "sue": -1.4, "sued": -1.5, "fraud": -2.8, "scandal": -2.6,
	"probe": -1.2, "investigation": -1.1, "fine": 0.8, "fined": -1.9, "penalty": -1.9,
	"bankrupt": -2.9, "bankruptcy": -2.9, "default": -1.6, "debt": -1.2, "layoff": -2.1,
	"layoffs": -2.1, "cut": -1.1, "cuts": -1.1, "recall": -1.4, "recalls": -1.4,
	"warning": -1.4, "warns": -1.4, "warned": -1.4, "crisis": -3.1, "recession": -2.6,
	"inflation": -1.0, "selloff": -1.9, "sell": -0.6, "delay": -1.3, "delays": -1.3,
	"delayed": -1.3, "problem": -1.7, "problems": -1.7, "trouble": -1.7, "struggle": -1.9,
	"struggles": -1.9, "struggling": -1.8, "disappoint": -1.7, "disappointing": -2.2,
	"disappointed": -1.9, "disappoints": -1.6, "shortfall": -1.7, "downside": -1.4,
	"pessimistic": -1.5, "angry": -2.3, "damage": -2.2, "hurt": -2.4, "threat": -2.4,
	"threatens": -2.0, "collapse": -2.6, "collapses": -2.6, "halt": -1.1, "halted": -1.1,
	"ban": -2.6, "banned": -2.0, "slowdown": -1.4, "unstable": -1.5, "unfavorable": -2.1,
}

// boosters scale the valence of the word that follows them.
var boosters = map[string]float64{
	"absolutely": boostIncr, "very": boostIncr, "extremely": boostIncr, "really": boostIncr,
	"highly": boostIncr, "hugely": boostIncr, "incredibly": boostIncr, "most": boostIncr,
	"more": boostIncr, "so": boostIncr, "sharply": boostIncr, "significantly": boostIncr,
	"substantially": boostIncr, "strongly": boostIncr, "totally": boostIncr, "deeply": boostIncr,
	"barely": boostDecr, "hardly": boostDecr, "slightly": boostDecr, "somewhat": boostDecr,
	"marginally": boostDecr, "less": boostDecr, "little": boostDecr, "partly": boostDecr,
	"modestly": boostDecr, "mildly": boostDecr,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "nowhere": {}, "without": {}, "cannot": {}, "cant": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "wasnt": {}, "arent": {},
	"werent": {}, "wont": {}, "wouldnt": {}, "shouldnt": {}, "couldnt": {}, "hasnt": {},
	"havent": {}, "hadnt": {}, "aint": {}, "despite": {},
}
