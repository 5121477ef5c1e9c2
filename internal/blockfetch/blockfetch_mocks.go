package blockfetch

//go:generate moq -pkg mocks -out ./mocks/block_requester_mock.go . BlockRequester
