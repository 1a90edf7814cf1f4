package contract

// StakingABI is the BYFN staking contract. getStakingTier returns 0 for no
// tier and 1..4 for Bronze..Diamond.
var StakingABI = registerBuiltin("staking", "BYFN Staking", "stake BYFN for fee tiers and rewards", stakingJSON)

const stakingJSON = `[
  {"type":"function","name":"stakedBalance","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"earned","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalStaked","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getStakingTier","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"stake","stateMutability":"nonpayable",
   "inputs":[{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"unstake","stateMutability":"nonpayable",
   "inputs":[{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"claimRewards","stateMutability":"nonpayable",
   "inputs":[],
   "outputs":[]}
]`
