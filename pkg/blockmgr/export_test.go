package blockmgr

var ClientParameters = (*BlockManager).clientParameters
