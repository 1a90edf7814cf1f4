package contract

// MarketABI is the OPR secondary market. listings(id) returns the tuple
// (seller, tokenId, amount, floorPrice, active); floorPrice is WAD (18 decimals).
var MarketABI = registerBuiltin("market", "OPR Secondary Market", "peer listings and instant sell to protocol", marketJSON)

const marketJSON = `[
  {"type":"function","name":"listingCounter","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"spreadBps","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"feePercent","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"listings","stateMutability":"view",
   "inputs":[{"name":"","type":"uint256"}],
   "outputs":[
     {"name":"seller","type":"address"},
     {"name":"tokenId","type":"uint256"},
     {"name":"amount","type":"uint256"},
     {"name":"floorPrice","type":"uint256"},
     {"name":"active","type":"bool"}]},
  {"type":"function","name":"createListing","stateMutability":"nonpayable",
   "inputs":[{"name":"tokenId","type":"uint256"},{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"sellToProtocol","stateMutability":"nonpayable",
   "inputs":[{"name":"tokenId","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"quoteToken","type":"address"}],
   "outputs":[]},
  {"type":"function","name":"buyListing","stateMutability":"nonpayable",
   "inputs":[{"name":"listingId","type":"uint256"},{"name":"quoteToken","type":"address"}],
   "outputs":[]}
]`
