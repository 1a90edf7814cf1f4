package contract

// ERC1155ABI covers the OPR asset vault (ERC-1155 multi-token).
var ERC1155ABI = registerBuiltin("erc1155", "OPR Asset Vault (ERC-1155)", "tokenized real-world asset positions", erc1155JSON)

const erc1155JSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"isApprovedForAll","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"},{"name":"operator","type":"address"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable",
   "inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],
   "outputs":[]}
]`
